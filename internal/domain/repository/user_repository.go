package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines the credential-store operations on users.
// Token arguments are always the stored (hashed) form.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	SetEmailVerificationToken(ctx context.Context, id string, token string, expires time.Time) error
	SetPasswordResetToken(ctx context.Context, id string, token string, expires time.Time) error
	ClearPasswordResetToken(ctx context.Context, id string) error

	// FindByVerificationToken and FindByResetToken match only unexpired tokens.
	FindByVerificationToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)

	// ConsumeVerificationToken sets the password, marks the email verified and
	// clears the token in one conditional update. ErrNotFound when no unexpired
	// token matched.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time, passwordHash string) (*entity.User, error)
	// ConsumeResetToken sets the password and clears the reset token in one conditional update.
	ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*entity.User, error)

	SetAvatar(ctx context.Context, id string, url string) (*entity.User, error)
}

// RefreshTokenRepository persists login sessions. Token arguments are hashed.
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *entity.RefreshToken) error
	// FindActive returns the non-revoked record for token; expiry is checked by the caller.
	FindActive(ctx context.Context, token string) (*entity.RefreshToken, error)
	// Revoke marks the record revoked whatever its state. Missing records are not an error.
	Revoke(ctx context.Context, token string) error
	// RevokeIfValid atomically revokes a usable token and returns it as it was before.
	RevokeIfValid(ctx context.Context, token string, now time.Time) (*entity.RefreshToken, error)
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
}

type CompanyLookup interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

type AuditRepository interface {
	Insert(ctx context.Context, log *entity.AuditLog) error
}
