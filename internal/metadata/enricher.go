// Package metadata fills the gaps in a cataloged book from external sources.
// Only empty fields are written; anything the owner entered by hand wins.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/okatkov/shelfmark/internal/entities"
)

// Enricher updates books with metadata looked up by ISBN.
type Enricher struct {
	db       *gorm.DB
	provider MetadataProvider
}

func NewEnricher(db *gorm.DB, provider MetadataProvider) *Enricher {
	return &Enricher{db: db, provider: provider}
}

// ErrNoISBN is returned when a book carries no ISBN to look up.
var ErrNoISBN = errors.New("book has no ISBN")

// NeedsEnrichment reports whether a lookup could add anything to the book.
func NeedsEnrichment(book *entities.Book) bool {
	if book.ISBN == "" {
		return false
	}
	return book.Author == "" || book.CoverURL == "" || book.PublicationYear == 0
}

// EnrichBook looks the book up by ISBN and fills its empty fields. A lookup
// miss is not an error; the book simply stays as it is.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) error {
	var book entities.Book
	if err := e.db.First(&book, bookID).Error; err != nil {
		return fmt.Errorf("load book %d: %w", bookID, err)
	}
	if book.ISBN == "" {
		return ErrNoISBN
	}

	meta, err := e.provider.SearchByISBN(ctx, book.ISBN)
	if err != nil {
		log.Printf("Metadata lookup failed for ISBN %s: %v", book.ISBN, err)
		return nil
	}

	updates := map[string]any{}
	if book.Author == "" && meta.Author != "" {
		updates["author"] = meta.Author
	}
	if book.CoverURL == "" && meta.CoverURL != "" {
		updates["cover_url"] = meta.CoverURL
	}
	if book.PublicationYear == 0 && meta.PublicationYear != 0 {
		updates["publication_year"] = meta.PublicationYear
	}
	if len(updates) == 0 {
		return nil
	}

	if err := e.db.Model(&book).Updates(updates).Error; err != nil {
		return fmt.Errorf("update book %d: %w", bookID, err)
	}

	log.Printf("Enriched book %d (%s) with %d fields", bookID, book.Title, len(updates))
	return nil
}
