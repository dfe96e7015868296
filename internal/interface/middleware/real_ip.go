package middleware

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIPKey is the gin context key holding the resolved caller address.
const ClientIPKey = "client_ip"

// single-address headers set by the edge proxy, in order of trust
var clientIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP"}

// RealIP resolves the caller address once per request for rate-limit keys,
// audit entries and access logs. Only the left-most X-Forwarded-For hop is used.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ClientIPKey, resolveClientIP(c))
		c.Next()
	}
}

func resolveClientIP(c *gin.Context) string {
	for _, h := range clientIPHeaders {
		if ip, ok := parseIP(c.GetHeader(h)); ok {
			return ip
		}
	}
	if first, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ","); first != "" {
		if ip, ok := parseIP(first); ok {
			return ip
		}
	}
	return c.ClientIP()
}

func parseIP(v string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(v))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

// ClientIP returns the address stored by RealIP, or gin's own view when the
// middleware is not installed.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(ClientIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
