package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/pkg/auth"
)

func sign(t *testing.T, c jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := sign(t, auth.Claims{
		Username: "admin",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	c, err := auth.Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin", c.DisplayName())

	got, ok := c.Expiry()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.ExpiresWithin(time.Now(), 2*time.Hour))
}

func TestInspect_NoExpiry(t *testing.T) {
	c, err := auth.Inspect(sign(t, auth.Claims{AdminID: float64(7)}))
	require.NoError(t, err)
	assert.Equal(t, "7", c.DisplayName())
	assert.False(t, c.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestInspect_Opaque(t *testing.T) {
	_, err := auth.Inspect("abc")
	assert.ErrorIs(t, err, auth.ErrNotJWT)
}
