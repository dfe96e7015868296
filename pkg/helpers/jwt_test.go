package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 15*time.Minute)
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	tok, exp, err := m.GenerateAccessToken("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(15*time.Minute), exp)
	assert.Equal(t, 900, m.ExpiresInSeconds())

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, fixed.Unix(), claims.IssuedAt.Unix())
}

func TestAccessTokenExpired(t *testing.T) {
	m := NewJWTManager("secret", 15*time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }
	tok, _, err := m.GenerateAccessToken("u1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccessToken(tok)
	require.Error(t, err)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, _, err := NewJWTManager("one", time.Minute).GenerateAccessToken("u1")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Minute).ParseAccessToken(tok)
	require.Error(t, err)
}

func TestAccessTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Minute).ParseAccessToken(tok)
	require.Error(t, err)
}
