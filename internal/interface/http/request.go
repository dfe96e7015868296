package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	app "github.com/rohn-shah/diode-be/internal/application"
	"github.com/rohn-shah/diode-be/internal/interface/middleware"
	"github.com/rohn-shah/diode-be/pkg/response"
	"github.com/rohn-shah/diode-be/pkg/validation"
)

// requestCtx carries the caller's ip and user agent into the service layer.
func requestCtx(c *gin.Context) context.Context {
	return app.WithRequestMeta(c.Request.Context(), app.RequestMeta{
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
}

// bindBody decodes an optional JSON body. An empty body leaves dst zeroed so
// the service can report which fields are missing.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error[any](c, http.StatusBadRequest, "Invalid request body", validation.ToDetails(err))
		return false
	}
	return true
}
