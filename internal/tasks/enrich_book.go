package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/okatkov/shelfmark/internal/metadata"
)

// BookEnricher fills missing catalog metadata for one book.
type BookEnricher interface {
	EnrichBook(ctx context.Context, bookID uint) error
}

// EnrichBookTask looks up a book's ISBN against an external catalog and
// fills whatever metadata fields are still empty.
type EnrichBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for metadata enrichment.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichBookProcessor creates a processor function for EnrichBookTask.
func EnrichBookProcessor(enricher BookEnricher) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if enricher == nil {
			return fmt.Errorf("book enricher not configured")
		}

		err := enricher.EnrichBook(ctx, task.BookID)
		if errors.Is(err, metadata.ErrNoISBN) {
			// Nothing to look up; retrying will not help.
			log.Printf("[TASK] Skipped enrichment for book %d: no ISBN", task.BookID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("enrich book %d: %w", task.BookID, err)
		}

		log.Printf("[TASK] Enriched metadata for book %d", task.BookID)
		return nil
	}
}

// NewEnrichBookQueue creates a backlite queue for metadata enrichment.
func NewEnrichBookQueue(enricher BookEnricher) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(enricher))
}
