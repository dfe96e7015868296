package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/rohn-shah/diode-be/internal/application"
	"github.com/rohn-shah/diode-be/pkg/response"
	"github.com/rohn-shah/diode-be/pkg/validation"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Svc    *app.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *app.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Create POST /api/user
func (h *UserHandler) Create(c *gin.Context) {
	var req app.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Validation failed", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.CreateUser(requestCtx(c), req)
	if err != nil {
		writeError(c, h.Logger, err, "Error creating user")
		return
	}
	c.JSON(http.StatusCreated, u)
}

// ResendInvite POST /api/user/:id/resend-invite
func (h *UserHandler) ResendInvite(c *gin.Context) {
	if err := h.Svc.ResendInvite(requestCtx(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err, "Error sending invitation")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Set password email sent", nil)
}

// UploadAvatar POST /api/user/:id/avatar (multipart field "file")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "File is required", map[string]string{"file": "is required"})
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusBadRequest, "File too large", map[string]string{"file": "must be at most 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err, "Error uploading avatar")
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), c.Param("id"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, err, "Error uploading avatar")
		return
	}
	response.Success(c, http.StatusOK, u, "Avatar updated", nil)
}

// Search GET /api/user/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err, "Error searching users")
		return
	}
	response.Success(c, http.StatusOK, hits, "", map[string]any{"count": len(hits)})
}
