package testkit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kuhttp "github.com/shashiranjanraj/kuman/pkg/http"
	"github.com/shashiranjanraj/kuman/pkg/testkit"
)

func TestMockTransport_Routes(t *testing.T) {
	mt := testkit.Install(t)
	mt.On("GET", "/admin/order").JSON(200, []map[string]int{{"orderId": 1}})

	resp, err := kuhttp.Get("http://api.test/admin/order").Query("x", "1").Bearer("tok").Send()
	require.NoError(t, err)

	var got []map[string]int
	require.NoError(t, resp.Decode(&got))
	assert.Equal(t, 1, got[0]["orderId"])

	calls := mt.Calls("GET", "/admin/order")
	require.Len(t, calls, 1)
	assert.Equal(t, "1", calls[0].Query["x"])
	testkit.AssertBearer(t, calls[0], "tok")
	mt.AssertAllCalled(t)
}

func TestMockTransport_Unmatched404(t *testing.T) {
	testkit.Install(t)
	resp, err := kuhttp.Get("http://api.test/nope").Send()
	require.NoError(t, err)
	assert.True(t, kuhttp.IsStatus(resp.Throw(), 404))
}

func TestMockTransport_FailAndDelay(t *testing.T) {
	mt := testkit.Install(t)
	boom := errors.New("boom")
	mt.On("GET", "/fail").Fail(boom)
	mt.On("GET", "/slow").Delay(time.Second)

	_, err := kuhttp.Get("http://api.test/fail").Send()
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = kuhttp.Get("http://api.test/slow").WithContext(ctx).Send()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
