package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/db/repos"
	"github.com/saymi-el/looply/internal/events"
	"github.com/saymi-el/looply/internal/logger"
	"github.com/saymi-el/looply/internal/types"
)

// ErrUnknownRenderStatus is returned for webhook payloads whose status is
// not one of the delegate's documented values.
var ErrUnknownRenderStatus = errors.New("unknown render status")

// ErrCorrelationMismatch is returned when a webhook names a job but carries a
// render job id that does not match the one recorded at hand-off.
var ErrCorrelationMismatch = errors.New("render job id does not match job")

// ErrMissingVideoURL is returned for a completed notification that carries no
// artifact URL. Completing a job without one would strand the caller.
var ErrMissingVideoURL = errors.New("completed notification is missing the video url")

// Webhook applies render delegate notifications to jobs.
type Webhook struct {
	jobs *repos.VideoJobRepository
}

// NewWebhookService creates a new webhook service instance
func NewWebhookService(jobs *repos.VideoJobRepository) *Webhook {
	return &Webhook{jobs: jobs}
}

// HandleNotification applies one delegate callback. Duplicate terminal
// notifications return repos.ErrJobFinalized so the receiver can acknowledge
// them without re-applying; unknown jobs return gorm.ErrRecordNotFound.
func (s *Webhook) HandleNotification(ctx context.Context, payload types.RenderWebhookPayload) error {
	job, err := s.findJob(ctx, payload)
	if err != nil {
		return err
	}

	logger.InfoWithFields("Render webhook received", map[string]interface{}{
		"job_id":        job.ID,
		"render_job_id": payload.RenderJobID,
		"status":        payload.Status,
	})

	switch payload.Status {
	case types.RenderStatusCompleted:
		if payload.VideoURL == "" {
			return ErrMissingVideoURL
		}
		return s.complete(ctx, job, payload)
	case types.RenderStatusFailed:
		message := payload.Error
		if message == "" {
			message = "render delegate reported failure"
		}
		if err := s.jobs.Fail(ctx, job.ID, message); err != nil {
			return err
		}
		events.Publish(events.Event{Type: events.EventJobFailed, JobID: job.ID, RenderJobID: payload.RenderJobID, Error: message})
		return nil
	case types.RenderStatusProcessing:
		// Informational only, the job stays parked at the hand-off checkpoint.
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRenderStatus, payload.Status)
	}
}

// complete merges the hand-off snapshot with the delegate's outcome and
// finalizes the job.
func (s *Webhook) complete(ctx context.Context, job *models.VideoJob, payload types.RenderWebhookPayload) error {
	result, err := job.ResultData()
	if err != nil || result == nil {
		result = &types.VideoResult{}
	}

	result.URL = payload.VideoURL
	result.CloudProvider = payload.CloudProvider
	result.Metadata = payload.Metadata
	if result.RenderJobID == "" {
		result.RenderJobID = payload.RenderJobID
	}
	result.Steps = append(result.Steps, types.PipelineStep{
		Name:   "render",
		Status: types.StepStatusOK,
		Meta:   map[string]interface{}{"cloud_provider": payload.CloudProvider},
	})
	if result.Summary == "" {
		result.Summary = "Video rendered by remote delegate"
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	var metadata json.RawMessage
	if payload.Metadata != nil {
		metadata, err = json.Marshal(payload.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	if err := s.jobs.Complete(ctx, job.ID, data, payload.CloudProvider, metadata); err != nil {
		return err
	}
	events.Publish(events.Event{Type: events.EventJobCompleted, JobID: job.ID, RenderJobID: payload.RenderJobID})
	return nil
}

// findJob resolves the webhook to a job by job id first, then by the render
// correlation id, and rejects mismatched correlation ids.
func (s *Webhook) findJob(ctx context.Context, payload types.RenderWebhookPayload) (*models.VideoJob, error) {
	if payload.VideoJobID != "" {
		job, err := s.jobs.GetByID(ctx, payload.VideoJobID)
		if err == nil {
			if payload.RenderJobID != "" && job.RenderJobID != "" && job.RenderJobID != payload.RenderJobID {
				return nil, ErrCorrelationMismatch
			}
			return job, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if payload.RenderJobID != "" {
		return s.jobs.GetByRenderJobID(ctx, payload.RenderJobID)
	}
	return nil, gorm.ErrRecordNotFound
}
