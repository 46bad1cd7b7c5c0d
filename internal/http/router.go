package http

import (
	"github.com/gin-gonic/gin"

	"github.com/okatkov/shelfmark/internal/auth"
	"github.com/okatkov/shelfmark/internal/config"
	"github.com/okatkov/shelfmark/internal/database"
	"github.com/okatkov/shelfmark/internal/demo"
	"github.com/okatkov/shelfmark/internal/tasks"
)

// RouterConfig receives all router dependencies, improving testability and
// reducing parameter count.
type RouterConfig struct {
	Database *database.Database

	ListRegistry      ListRegistry
	MembershipManager MembershipManager
	FavoritesMapper   FavoritesMapper
	BookStore         BookStore
	CoverCache        CoverCache

	TaskClient *tasks.Client
	DemoMode   bool

	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	Version string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Demo guard runs before CSRF and sessions so blocked writes stay cheap
	if cfg.DemoMode {
		router.Use(demo.NewMiddleware(true).Handler())
	}

	// Apply CSRF protection if auth is enabled
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's
	// request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default owner ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Health endpoints
	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)
	router.GET("/ping", healthController.Ping)

	// Auth endpoints
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	// List endpoints
	if cfg.ListRegistry != nil {
		listsController := NewListsController(cfg.ListRegistry)
		router.POST("/api/lists", listsController.CreateList)
		router.GET("/api/lists", listsController.GetLists)
		router.GET("/api/lists/:id", listsController.GetList)
		router.PATCH("/api/lists/:id", listsController.UpdateList)
		router.DELETE("/api/lists/:id", listsController.DeleteList)
	}

	// Membership endpoints
	if cfg.MembershipManager != nil {
		membershipsController := NewMembershipsController(cfg.MembershipManager)
		router.POST("/api/lists/:id/books", membershipsController.AddBook)
		router.DELETE("/api/lists/:id/books/:bookId", membershipsController.RemoveBook)
		router.PATCH("/api/lists/:id/books/:bookId", membershipsController.UpdateNotes)
		router.PUT("/api/lists/:id/order", membershipsController.ReorderBooks)
	}

	// Favorites endpoints
	if cfg.FavoritesMapper != nil {
		favoritesController := NewFavoritesController(cfg.FavoritesMapper)
		router.PUT("/api/favorites/:bookId", favoritesController.SetFavorite)
		router.DELETE("/api/favorites/:bookId", favoritesController.RemoveFavorite)
		router.GET("/api/favorites", favoritesController.ListFavorites)
		router.GET("/api/favorites/years", favoritesController.ListYears)
	}

	// Book catalog endpoints
	if cfg.BookStore != nil {
		booksController := NewBooksController(cfg.BookStore, cfg.TaskClient, cfg.CoverCache)
		router.POST("/api/books", booksController.CreateBook)
		router.GET("/api/books", booksController.GetBooks)
		router.DELETE("/api/books/:id", booksController.DeleteBook)

		if cfg.CoverCache != nil {
			coversController := NewCoversController(cfg.BookStore, cfg.CoverCache)
			router.GET("/api/books/:id/cover", coversController.GetCover)
		}
	}

	// Admin endpoints
	if cfg.TaskClient != nil {
		adminController := NewAdminController(cfg.TaskClient)
		router.POST("/api/admin/lists/:id/compact", adminController.CompactList)
		router.POST("/api/admin/books/:id/enrich", adminController.EnrichBook)
	}

	return router
}
