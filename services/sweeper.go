package services

import (
	"context"
	"time"

	"rag-docqa-platform/internal/logger"
	"rag-docqa-platform/models"

	"github.com/go-co-op/gocron"
)

// Sweeper periodically removes chunks left behind by ingestions that
// failed mid-batch. A failed document keeps its partial index until the
// next sweep; partial rows are valid, merely under-indexed.
type Sweeper struct {
	documents DocumentStore
	chunks    ChunkStore
	scheduler *gocron.Scheduler
	interval  time.Duration
}

func NewSweeper(documents DocumentStore, chunks ChunkStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Sweeper{
		documents: documents,
		chunks:    chunks,
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
	}
}

// Start schedules the sweep and returns immediately.
func (s *Sweeper) Start() {
	_, err := s.scheduler.Every(s.interval).Do(s.sweep)
	if err != nil {
		logger.Error("Failed to schedule sweeper", "error", err)
		return
	}
	s.scheduler.StartAsync()
	logger.Info("Orphan chunk sweeper started", "interval", s.interval.String())
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	failed, err := s.documents.ListByStatus(ctx, models.StatusFailed)
	if err != nil {
		logger.Error("Sweep scan failed", "error", err)
		return
	}

	for _, doc := range failed {
		if err := s.chunks.DeleteByDocument(ctx, doc.OwnerID, doc.ID); err != nil {
			logger.Error("Sweep delete failed", "document_id", doc.ID, "error", err)
			continue
		}
		logger.Info("Swept partial index", "document_id", doc.ID)
	}
}
