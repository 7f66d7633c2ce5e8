// Package services provides business logic implementation for the API
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/db/repos"
	"github.com/saymi-el/looply/internal/events"
	"github.com/saymi-el/looply/internal/logger"
	"github.com/saymi-el/looply/internal/queue"
	"github.com/saymi-el/looply/internal/types"
)

// Video provides business logic for video job submission and status reads.
type Video struct {
	jobs  *repos.VideoJobRepository
	queue queue.Queue
}

// NewVideoService creates a new video service instance
func NewVideoService(jobs *repos.VideoJobRepository, q queue.Queue) *Video {
	return &Video{jobs: jobs, queue: q}
}

// Submit validates the request, persists a pending job and enqueues it for a
// worker. The job id is returned immediately; generation is asynchronous.
func (s *Video) Submit(ctx context.Context, ownerID uint, req types.VideoRequest) (*models.VideoJob, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid video request: %w", err)
	}

	job := &models.VideoJob{OwnerID: ownerID}
	if err := job.SetRequest(req); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := s.queue.Enqueue(ctx, job.ID); err != nil {
		// The job row stays PENDING; the operator can re-enqueue it.
		logger.ErrorWithFields("Failed to enqueue job", map[string]interface{}{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	logger.InfoWithFields("Video job submitted", map[string]interface{}{
		"job_id":   job.ID,
		"owner_id": ownerID,
	})
	events.Publish(events.Event{Type: events.EventJobSubmitted, JobID: job.ID, OwnerID: ownerID})
	return job, nil
}

// GetJob returns a job by id, scoped to its owner.
func (s *Video) GetJob(ctx context.Context, ownerID uint, id string) (*models.VideoJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID {
		// Do not leak the existence of other owners' jobs.
		return nil, gorm.ErrRecordNotFound
	}
	return job, nil
}

// ListJobs returns a page of the owner's jobs, newest first, with the total
// count for pagination.
func (s *Video) ListJobs(ctx context.Context, ownerID uint, opts *models.ListOptions) ([]models.VideoJob, int64, error) {
	return s.jobs.ListByOwner(ctx, ownerID, opts)
}
