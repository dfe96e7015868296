package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/rohn-shah/diode-be/internal/application"
	"github.com/rohn-shah/diode-be/pkg/helpers"
	"github.com/rohn-shah/diode-be/pkg/response"
	"github.com/rohn-shah/diode-be/pkg/validation"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable maps application errors to the status and message clients see.
var errorTable = []errorMapping{
	{app.ErrMissingCredentials, http.StatusBadRequest, "Email and password are required"},
	{app.ErrMissingRefreshToken, http.StatusBadRequest, "Refresh token is required"},
	{app.ErrMissingEmail, http.StatusBadRequest, "Email is required"},
	{app.ErrMissingTokenOrPassword, http.StatusBadRequest, "Token and password are required"},
	{app.ErrMissingTokenOrType, http.StatusBadRequest, "Token and type are required"},
	{app.ErrWeakPassword, http.StatusBadRequest, "Password must be at least 8 characters long"},
	{app.ErrInvalidToken, http.StatusBadRequest, "Invalid or expired token"},
	{app.ErrInvalidTokenType, http.StatusBadRequest, "Invalid token type"},
	{app.ErrPasswordAlreadySet, http.StatusBadRequest, "User has already set a password"},
	{app.ErrDuplicateEmail, http.StatusBadRequest, "User with this email already exists"},
	{app.ErrDuplicate, http.StatusBadRequest, "Record already exists"},

	{app.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{app.ErrAccountDeactivated, http.StatusUnauthorized, "Account is deactivated"},
	{app.ErrPasswordNotSet, http.StatusUnauthorized, "Please set your password first. Check your email for the setup link."},
	{app.ErrEmailNotVerified, http.StatusUnauthorized, "Please verify your email first"},
	{app.ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid or expired refresh token"},

	{app.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{app.ErrNotFound, http.StatusNotFound, "Record not found"},

	{app.ErrEmailDelivery, http.StatusInternalServerError, "Error sending email. Please try again later."},
	{app.ErrStorageUnavailable, http.StatusServiceUnavailable, "File storage is not configured"},
}

// writeError renders err through errorTable. Unmapped errors become a 500
// with fallback as the message and are logged.
func writeError(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	if errors.Is(err, app.ErrValidation) {
		response.Error[any](c, http.StatusBadRequest, "Validation failed", validation.ToDetails(err))
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			response.Error[any](c, m.status, m.message, nil)
			return
		}
	}
	helpers.LogError(logger, fallback, err, logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString("request_id"),
	})
	response.Error[any](c, http.StatusInternalServerError, fallback, nil)
}
