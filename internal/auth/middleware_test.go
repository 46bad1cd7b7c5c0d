package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/okatkov/shelfmark/internal/config"
	"github.com/okatkov/shelfmark/internal/entities"
)

func newMiddlewareRouter(t *testing.T, mode config.AuthMode) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Auth{Mode: mode, BcryptCost: bcrypt.MinCost}

	var service *Service
	if mode == config.AuthModeLocal {
		service = setupTestService(t)
	}

	router := gin.New()
	router.Use(NewMiddleware(service, nil, cfg).Handler())
	router.GET("/api/books", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"owner": GetUserID(c)})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router, service
}

func get(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_NoAuthMode(t *testing.T) {
	router, _ := newMiddlewareRouter(t, config.AuthModeNone)

	w := get(router, "/api/books", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_LocalMode(t *testing.T) {
	t.Run("unauthenticated request gets a JSON 401", func(t *testing.T) {
		router, _ := newMiddlewareRouter(t, config.AuthModeLocal)

		w := get(router, "/api/books", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "authentication required")
	})

	t.Run("public paths stay open", func(t *testing.T) {
		router, _ := newMiddlewareRouter(t, config.AuthModeLocal)

		w := get(router, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("valid bearer token authenticates", func(t *testing.T) {
		router, service := newMiddlewareRouter(t, config.AuthModeLocal)

		user, err := service.CreateUser("reader", "reader@example.com", "correct horse battery", entities.UserRoleEditor)
		require.NoError(t, err)
		token, err := service.GenerateToken(user.ID)
		require.NoError(t, err)

		w := get(router, "/api/books", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("garbage bearer token is rejected", func(t *testing.T) {
		router, _ := newMiddlewareRouter(t, config.AuthModeLocal)

		w := get(router, "/api/books", "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
