// Package demo provides the read-only guard for public demo deployments.
package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware rejects mutating requests when demo mode is on, so a publicly
// reachable instance stays browsable but cannot be edited.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// Handler returns a gin middleware that blocks every mutating request
// except the auth endpoints needed to sign in and out of the demo account.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if allowedInDemo(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "this action is disabled in demo mode",
			"code":      "demo_mode",
			"demo_mode": true,
		})
	}
}

// allowedInDemo lists the only mutating paths a demo instance accepts.
func allowedInDemo(path string) bool {
	for _, prefix := range []string{"/api/auth/login", "/api/auth/logout"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
