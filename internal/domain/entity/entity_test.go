package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenIsValid(t *testing.T) {
	now := time.Now()
	tok := RefreshToken{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, tok.IsValid(now))

	tok.IsRevoked = true
	assert.False(t, tok.IsValid(now))

	tok = RefreshToken{ExpiresAt: now}
	assert.False(t, tok.IsValid(now), "expiry must be strictly in the future")
}

func TestTokenValid(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Second)

	assert.True(t, TokenValid("abc", &later, now))
	assert.False(t, TokenValid("", &later, now))
	assert.False(t, TokenValid("abc", nil, now))
	assert.False(t, TokenValid("abc", &earlier, now))
	assert.False(t, TokenValid("abc", &now, now))

	u := User{EmailVerificationToken: "v", EmailVerificationExpires: &later, PasswordResetToken: "r", PasswordResetExpires: &earlier}
	assert.True(t, u.VerificationPending(now))
	assert.False(t, u.ResetPending(now))
	assert.False(t, u.VerificationPending(later))
}

func TestUserJSONHidesCredentials(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	u := User{
		Email:                    "alice@example.com",
		FirstName:                "Alice",
		LastName:                 "Smith",
		Password:                 "$2a$10$hash",
		EmailVerificationToken:   "verify",
		EmailVerificationExpires: &exp,
		PasswordResetToken:       "reset",
		PasswordResetExpires:     &exp,
	}
	b, err := json.Marshal(u)
	require.NoError(t, err)

	s := string(b)
	assert.NotContains(t, s, "password")
	assert.NotContains(t, s, "verify")
	assert.NotContains(t, s, "reset")
	assert.Equal(t, "Alice Smith", u.FullName())
	assert.True(t, u.HasPassword())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
