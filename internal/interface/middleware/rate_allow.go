package middleware

import (
	"net/http"
	"net/netip"

	"github.com/gin-gonic/gin"
)

// AllowFunc reports whether a request skips the limit.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP exempts loopback and private-range callers, e.g. an in-cluster
// scraper of the debug counters.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		addr, err := netip.ParseAddr(ClientIP(c))
		if err != nil {
			return false
		}
		return addr.IsLoopback() || addr.IsPrivate()
	}
}

// skipLimit also exempts CORS preflight so the admin UI never sees a 429 on OPTIONS.
func skipLimit(c *gin.Context, allow AllowFunc) bool {
	if c.Request.Method == http.MethodOptions {
		return true
	}
	return allow != nil && allow(c)
}
