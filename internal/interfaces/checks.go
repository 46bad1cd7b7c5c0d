package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/okatkov/shelfmark/internal/covers"
	"github.com/okatkov/shelfmark/internal/database"
	"github.com/okatkov/shelfmark/internal/favorites"
	"github.com/okatkov/shelfmark/internal/http"
	"github.com/okatkov/shelfmark/internal/importers"
	"github.com/okatkov/shelfmark/internal/lists"
	"github.com/okatkov/shelfmark/internal/memberships"
	"github.com/okatkov/shelfmark/internal/metadata"
	"github.com/okatkov/shelfmark/internal/tasks"
)

// HTTP layer stores
var _ http.ListRegistry = (*lists.Service)(nil)
var _ http.MembershipManager = (*memberships.Service)(nil)
var _ http.FavoritesMapper = (*favorites.Service)(nil)
var _ http.BookStore = (*database.Database)(nil)
var _ http.CoverCache = (*covers.Cache)(nil)

// Background task dependencies
var _ tasks.ListCompactor = (*memberships.Service)(nil)
var _ tasks.BookEnricher = (*metadata.Enricher)(nil)

// External services
var _ metadata.MetadataProvider = (*metadata.OpenLibraryClient)(nil)

// Import pipeline
var _ importers.BookCatalog = (*database.Database)(nil)
var _ importers.ListAppender = (*memberships.Service)(nil)
