package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saymi-el/looply/internal/db/repos"
	"github.com/saymi-el/looply/internal/logger"
)

// Sweeper periodically fails jobs that were handed off to the render
// delegate but never received a callback.
type Sweeper struct {
	jobs     *repos.VideoJobRepository
	interval time.Duration
	maxAge   time.Duration
}

// NewSweeper creates a sweeper that runs every interval and finalizes
// hand-offs older than maxAge.
func NewSweeper(jobs *repos.VideoJobRepository, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{jobs: jobs, interval: interval, maxAge: maxAge}
}

// Run blocks until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	logger.Infof("Sweeper started, interval %s, max age %s", s.interval, s.maxAge)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Sweeper stopping")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				logger.Errorf("Sweep error: %v", err)
			}
		}
	}
}

// Sweep fails every stuck hand-off in one pass.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.maxAge)
	stuck, err := s.jobs.ListStuckAwaitingCallback(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stuck jobs: %w", err)
	}

	for _, job := range stuck {
		message := fmt.Sprintf("render delegate did not call back within %s", s.maxAge)
		if err := s.jobs.Fail(ctx, job.ID, message); err != nil {
			// A callback may have landed between the listing and this write.
			if errors.Is(err, repos.ErrJobFinalized) {
				continue
			}
			logger.Errorf("Failed to sweep job %s: %v", job.ID, err)
			continue
		}
		logger.WarnWithFields("Swept stuck job", map[string]interface{}{
			"job_id":        job.ID,
			"render_job_id": job.RenderJobID,
		})
	}
	return nil
}
