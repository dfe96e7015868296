package application

import (
	"errors"
	"fmt"

	repo "github.com/rohn-shah/diode-be/internal/domain/repository"
)

// Validation
var (
	ErrValidation             = errors.New("validation failed")
	ErrMissingCredentials     = errors.New("email and password are required")
	ErrMissingRefreshToken    = errors.New("refresh token is required")
	ErrMissingEmail           = errors.New("email is required")
	ErrMissingTokenOrPassword = errors.New("token and password are required")
	ErrMissingTokenOrType     = errors.New("token and type are required")
	ErrWeakPassword           = errors.New("password too short")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrInvalidTokenType       = errors.New("invalid token type")
	ErrPasswordAlreadySet     = errors.New("password already set")
)

// Auth
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDeactivated  = errors.New("account is deactivated")
	ErrPasswordNotSet      = errors.New("password not set")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// NotFound / Conflict
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
	ErrDuplicate      = errors.New("record already exists")
)

// Dependency
var (
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrStorageUnavailable = errors.New("storage not configured")
)

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// fromRepo maps persistence sentinels to application ones and wraps the rest with op.
func fromRepo(op string, err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, repo.ErrDuplicate) && duplicate != nil:
		return duplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
