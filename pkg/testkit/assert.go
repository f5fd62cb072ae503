package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONBody deep-compares two JSON documents after normalising both
// through unmarshal, so key order and whitespace never matter.
func AssertJSONBody(t *testing.T, expected, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal), "expected body is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "actual body is not valid JSON\nbody: %s", string(actual)) {
		return
	}
	assert.Equal(t, expVal, actVal, "response body mismatch")
}

// AssertBearer checks the Authorization header of a recorded call.
func AssertBearer(t *testing.T, c Call, token string) {
	t.Helper()
	assert.Equal(t, "Bearer "+token, c.Header.Get("Authorization"))
}
