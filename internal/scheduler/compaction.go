// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/okatkov/shelfmark/internal/config"
	"github.com/okatkov/shelfmark/internal/tasks"
)

// CompactionScheduler periodically enqueues a position-compaction sweep over
// all standard lists. Disabled unless COMPACTION_ENABLED is set.
type CompactionScheduler struct {
	taskClient *tasks.Client
	cfg        config.Compaction

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCompactionScheduler creates a new scheduler instance.
func NewCompactionScheduler(taskClient *tasks.Client, cfg config.Compaction) *CompactionScheduler {
	return &CompactionScheduler{
		taskClient: taskClient,
		cfg:        cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if compaction is enabled.
func (s *CompactionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Compaction scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid compaction schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Compaction scheduler: started with schedule '%s'", s.cfg.Schedule)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *CompactionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Compaction scheduler: stopped")
}

func (s *CompactionScheduler) runSweep() {
	if s.taskClient == nil {
		log.Printf("Compaction scheduler: task client not configured, skipping sweep")
		return
	}
	if _, err := s.taskClient.Add(tasks.CompactAllListsTask{}).Save(); err != nil {
		log.Printf("Compaction scheduler: failed to enqueue sweep: %v", err)
		return
	}
	log.Printf("Compaction scheduler: sweep enqueued")
}
