package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/rohn-shah/diode-be/internal/application"
	"github.com/rohn-shah/diode-be/pkg/response"
)

type AuthHandler struct {
	Service *app.AuthService
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *app.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Service: svc, Logger: logger}
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type tokenPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type verifyTokenRequest struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// Login POST /api/auth/login {email, password, rememberMe?}
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindBody(c, &req) {
		return
	}
	res, err := h.Service.Login(requestCtx(c), app.LoginInput{Email: req.Email, Password: req.Password, RememberMe: req.RememberMe})
	if err != nil {
		writeError(c, h.Logger, err, "Error during login")
		return
	}
	response.Success(c, http.StatusOK, res, "Login successful", nil)
}

// Refresh POST /api/auth/refresh {refreshToken}
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindBody(c, &req) {
		return
	}
	res, err := h.Service.Refresh(requestCtx(c), req.RefreshToken)
	if err != nil {
		writeError(c, h.Logger, err, "Error refreshing token")
		return
	}
	response.Success(c, http.StatusOK, res, "Token refreshed", nil)
}

// Logout POST /api/auth/logout {refreshToken?}
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.Service.Logout(requestCtx(c), req.RefreshToken); err != nil {
		writeError(c, h.Logger, err, "Error during logout")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Logout successful", nil)
}

// ForgotPassword POST /api/auth/forgot-password {email}
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.Service.ForgotPassword(requestCtx(c), req.Email); err != nil {
		writeError(c, h.Logger, err, "Error processing request")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "If the email exists, a password reset link has been sent", nil)
}

// ResetPassword POST /api/auth/reset-password {token, password}
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req tokenPasswordRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.Service.ResetPassword(requestCtx(c), req.Token, req.Password); err != nil {
		writeError(c, h.Logger, err, "Error resetting password")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password reset successful. Please login with your new password.", nil)
}

// SetPassword POST /api/auth/set-password {token, password}
func (h *AuthHandler) SetPassword(c *gin.Context) {
	var req tokenPasswordRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.Service.SetPassword(requestCtx(c), req.Token, req.Password); err != nil {
		writeError(c, h.Logger, err, "Error setting password")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password set successfully. You can now login.", nil)
}

// VerifyToken POST /api/auth/verify-token {token, type: email|reset}
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	var req verifyTokenRequest
	if !bindBody(c, &req) {
		return
	}
	owner, err := h.Service.VerifyToken(requestCtx(c), req.Token, req.Type)
	if err != nil {
		writeError(c, h.Logger, err, "Error verifying token")
		return
	}
	response.Success(c, http.StatusOK, owner, "Token is valid", nil)
}

// Me GET /api/auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.Service.CurrentUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err, "Error fetching user")
		return
	}
	response.Success(c, http.StatusOK, profile, "", nil)
}
