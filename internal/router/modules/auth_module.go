package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/rohn-shah/diode-be/internal/interface/http"
	"github.com/rohn-shah/diode-be/internal/interface/middleware"
	"github.com/rohn-shah/diode-be/pkg/helpers"
)

// AuthModule serves /api/auth. Everything but /me is public and rate limited per IP.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIP(), nil)   // 10 req/min per IP
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil) // 60 req/min per IP
	forgotLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	tokenLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	g := rg.Group("/auth")
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	g.POST("/logout", refreshLimiter, m.Handler.Logout)
	g.POST("/forgot-password", forgotLimiter, m.Handler.ForgotPassword)
	g.POST("/reset-password", tokenLimiter, m.Handler.ResetPassword)
	g.POST("/set-password", tokenLimiter, m.Handler.SetPassword)
	g.POST("/verify-token", tokenLimiter, m.Handler.VerifyToken)

	g.GET("/me", middleware.Auth(m.JWT), m.Handler.Me)
}
