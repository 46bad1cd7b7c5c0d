package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/shelfmark/internal/shelferr"
)

// CoverCache resolves a book's cover URL to a local file path and drops
// cached files when the book goes away.
type CoverCache interface {
	Get(ctx context.Context, bookID uint, coverURL string) (string, error)
	Invalidate(bookID uint) error
}

type CoversController struct {
	store BookStore
	cache CoverCache
}

func NewCoversController(store BookStore, cache CoverCache) *CoversController {
	return &CoversController{store: store, cache: cache}
}

// GetCover serves the cached cover image of a book.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.store.GetBookByID(id)
	if err != nil {
		respondServiceError(c, err, "load book")
		return
	}
	if book.OwnerID != GetUserID(c) {
		respondServiceError(c, shelferr.New(shelferr.KindOwnership, "book %d is not owned by the caller", id), "load book")
		return
	}
	if book.CoverURL == "" {
		respondServiceError(c, shelferr.New(shelferr.KindNotFound, "book %d has no cover", id), "load cover")
		return
	}

	path, err := cc.cache.Get(c.Request.Context(), book.ID, book.CoverURL)
	if err != nil {
		respondInternalError(c, err, "fetch cover")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
