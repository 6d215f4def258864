package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	tok, err := GenerateJWT("secret", 42, "trainer", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT("secret", tok)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "trainer", claims.Role)

	_, err = ParseJWT("other", tok)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	tok, err := GenerateJWT("secret", 1, "user", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT("secret", tok)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("matkhau123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("matkhau123", h))
	assert.False(t, CheckPasswordHash("sai", h))
}
