// Package importers brings external library exports into the catalog.
package importers

import (
	"fmt"
	"strings"

	"github.com/okatkov/shelfmark/internal/entities"
)

// BookCatalog is the slice of the book store the importer writes through.
type BookCatalog interface {
	CreateBook(book *entities.Book) error
	GetBooksForOwner(ownerID uint) ([]entities.Book, error)
}

// ListAppender appends imported books to the end of a list.
type ListAppender interface {
	Add(ownerID, listID, bookID uint, position *int) (*entities.Membership, error)
}

// Result summarizes one import run.
type Result struct {
	Created  int
	Skipped  int
	Appended int
	Errors   []string
}

// Pipeline handles the common import workflow:
// parse rows, deduplicate against the catalog, create books,
// optionally append them to a list.
type Pipeline struct {
	catalog BookCatalog
	lists   ListAppender
}

// NewPipeline creates an import pipeline. lists may be nil when imports
// never target a list.
func NewPipeline(catalog BookCatalog, lists ListAppender) *Pipeline {
	return &Pipeline{catalog: catalog, lists: lists}
}

// Import creates catalog entries for rows the owner does not already have.
// Existing books are matched by ISBN when both sides have one, otherwise by
// case-insensitive title and author. When listID is non-zero every created
// book is appended to that list in row order.
func (p *Pipeline) Import(ownerID uint, rows []GoodreadsRow, listID uint) (Result, error) {
	var result Result
	if len(rows) == 0 {
		return result, nil
	}

	existing, err := p.catalog.GetBooksForOwner(ownerID)
	if err != nil {
		return result, fmt.Errorf("load catalog: %w", err)
	}

	byISBN := make(map[string]bool, len(existing))
	byTitleAuthor := make(map[string]bool, len(existing))
	for _, b := range existing {
		if b.ISBN != "" {
			byISBN[b.ISBN] = true
		}
		byTitleAuthor[titleAuthorKey(b.Title, b.Author)] = true
	}

	for _, row := range rows {
		if row.ISBN != "" && byISBN[row.ISBN] {
			result.Skipped++
			continue
		}
		if byTitleAuthor[titleAuthorKey(row.Title, row.Author)] {
			result.Skipped++
			continue
		}

		book := &entities.Book{
			OwnerID:         ownerID,
			Title:           row.Title,
			Author:          row.Author,
			ISBN:            row.ISBN,
			PublicationYear: row.PublicationYear,
		}
		if err := p.catalog.CreateBook(book); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("create %q: %v", row.Title, err))
			continue
		}
		result.Created++

		if book.ISBN != "" {
			byISBN[book.ISBN] = true
		}
		byTitleAuthor[titleAuthorKey(book.Title, book.Author)] = true

		if listID != 0 && p.lists != nil {
			if _, err := p.lists.Add(ownerID, listID, book.ID, nil); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("append %q to list %d: %v", row.Title, listID, err))
				continue
			}
			result.Appended++
		}
	}

	return result, nil
}

func titleAuthorKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
}
