package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ListCompactor renumbers a standard list's positions to close removal gaps.
type ListCompactor interface {
	Compact(listID uint) error
	StandardListIDs() ([]uint, error)
}

// CompactListTask renumbers one list's membership positions.
type CompactListTask struct {
	ListID uint `json:"list_id"`
}

// Config returns the queue configuration for single-list compaction.
func (t CompactListTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "compact_list",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CompactListProcessor creates a processor function for CompactListTask.
func CompactListProcessor(compactor ListCompactor) backlite.QueueProcessor[CompactListTask] {
	return func(ctx context.Context, task CompactListTask) error {
		if compactor == nil {
			return fmt.Errorf("list compactor not configured")
		}

		if err := compactor.Compact(task.ListID); err != nil {
			return fmt.Errorf("compact list %d: %w", task.ListID, err)
		}

		log.Printf("[TASK] Compacted positions for list %d", task.ListID)
		return nil
	}
}

// NewCompactListQueue creates a backlite queue for single-list compaction.
func NewCompactListQueue(compactor ListCompactor) backlite.Queue {
	return backlite.NewQueue(CompactListProcessor(compactor))
}

// CompactAllListsTask sweeps every standard list.
type CompactAllListsTask struct{}

// Config returns the queue configuration for the full sweep.
func (t CompactAllListsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "compact_all_lists",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CompactAllListsProcessor compacts every standard list sequentially.
// Favorites-type lists are skipped by the compactor itself.
func CompactAllListsProcessor(compactor ListCompactor) backlite.QueueProcessor[CompactAllListsTask] {
	return func(ctx context.Context, task CompactAllListsTask) error {
		if compactor == nil {
			return fmt.Errorf("list compactor not configured")
		}

		ids, err := compactor.StandardListIDs()
		if err != nil {
			return fmt.Errorf("load standard lists: %w", err)
		}

		var failed int
		for _, id := range ids {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := compactor.Compact(id); err != nil {
				log.Printf("[TASK ERROR] compact list %d: %v", id, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("compaction sweep finished with %d failures out of %d lists", failed, len(ids))
		}

		log.Printf("[TASK] Compacted %d standard lists", len(ids))
		return nil
	}
}

// NewCompactAllListsQueue creates a backlite queue for compaction sweeps.
func NewCompactAllListsQueue(compactor ListCompactor) backlite.Queue {
	return backlite.NewQueue(CompactAllListsProcessor(compactor))
}
