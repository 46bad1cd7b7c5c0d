// Package auth resolves the authenticated principal for every request.
//
// It supports two authentication modes:
//   - "none": No authentication required (default), all requests use a default owner ID
//   - "local": Local user database with session cookies for web clients and Bearer tokens for API
//
// # Configuration
//
// Set AUTH_MODE environment variable to select the mode:
//
//	AUTH_MODE=none   # Default, no auth required
//	AUTH_MODE=local  # Requires user creation and login
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>    # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h             # Session duration
//	AUTH_TOKEN_EXPIRY=720h                # API token expiry (30 days default)
//	AUTH_BCRYPT_COST=12                   # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true              # HTTPS-only cookies
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(db, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Extract the owner in handlers:
//
//	ownerID := auth.GetUserID(c)  // Returns DefaultUserID in "none" mode
package auth
