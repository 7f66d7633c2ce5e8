// Package repos contains the database repositories.
package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/db/models"
)

// ErrJobFinalized is returned when an update targets a job that already
// reached a terminal state. Terminal states are final: the write is rejected
// and the stored result is left untouched.
var ErrJobFinalized = errors.New("job already finalized")

// ErrStaleProgress is returned when a progress write would move the job's
// progress backwards.
var ErrStaleProgress = errors.New("progress update is stale")

// ErrRenderJobIDImmutable is returned when a hand-off write would overwrite
// an already-stored render correlation id with a different value.
var ErrRenderJobIDImmutable = errors.New("render job id already set")

// VideoJobRepository handles database operations for video jobs.
//
// All mutating methods are single-record guarded updates: the WHERE clause
// carries the legal source states, so a lost race surfaces as zero affected
// rows instead of a corrupting write.
type VideoJobRepository struct {
	db *gorm.DB
}

// NewVideoJobRepository creates a new instance of VideoJobRepository
func NewVideoJobRepository(db *gorm.DB) *VideoJobRepository {
	return &VideoJobRepository{db: db}
}

// Create persists a new job record.
func (r *VideoJobRepository) Create(ctx context.Context, job *models.VideoJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its identifier.
func (r *VideoJobRepository) GetByID(ctx context.Context, id string) (*models.VideoJob, error) {
	var job models.VideoJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByRenderJobID retrieves the job holding the given render correlation id.
func (r *VideoJobRepository) GetByRenderJobID(ctx context.Context, renderJobID string) (*models.VideoJob, error) {
	var job models.VideoJob
	if err := r.db.WithContext(ctx).First(&job, "render_job_id = ?", renderJobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByOwner retrieves the owner's jobs, newest first, with the total count.
func (r *VideoJobRepository) ListByOwner(ctx context.Context, ownerID uint, opts *models.ListOptions) ([]models.VideoJob, int64, error) {
	if opts == nil {
		opts = &models.ListOptions{}
	}
	opts.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.VideoJob{}).
		Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.VideoJob
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(opts.PageSize).
		Offset(opts.Offset()).
		Find(&jobs).Error
	return jobs, total, err
}

// ListStuckAwaitingCallback returns jobs that handed off to the render
// delegate and have been RUNNING without a callback since before cutoff.
func (r *VideoJobRepository) ListStuckAwaitingCallback(ctx context.Context, cutoff time.Time) ([]models.VideoJob, error) {
	var jobs []models.VideoJob
	err := r.db.WithContext(ctx).
		Where("status = ? AND render_job_id <> '' AND updated_at < ?", models.VideoJobStatusRunning, cutoff).
		Find(&jobs).Error
	return jobs, err
}

// MarkRunning transitions a job into RUNNING with progress reset to zero.
// Allowed from PENDING and from RUNNING (queue re-delivery); rejected once
// the job is terminal.
func (r *VideoJobRepository) MarkRunning(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.VideoJob{}).
		Where("id = ? AND status IN ?", id, []models.VideoJobStatus{
			models.VideoJobStatusPending,
			models.VideoJobStatusRunning,
		}).
		Updates(map[string]interface{}{
			models.VideoJobStatusField:   models.VideoJobStatusRunning,
			models.VideoJobProgressField: 0,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.explainRejectedWrite(ctx, id)
	}
	return nil
}

// UpdateProgress advances a RUNNING job's progress. Progress is monotone:
// a write below the stored value is rejected.
func (r *VideoJobRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress %d out of range", progress)
	}
	result := r.db.WithContext(ctx).Model(&models.VideoJob{}).
		Where("id = ? AND status = ? AND progress <= ?", id, models.VideoJobStatusRunning, progress).
		Update(models.VideoJobProgressField, progress)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := r.explainRejectedWrite(ctx, id); err != nil {
			return err
		}
		return ErrStaleProgress
	}
	return nil
}

// SetHandoff records the render delegate hand-off: correlation id, the sent
// snapshot as an interim result, and progress 30. The correlation id is
// write-once; a second hand-off with a different id is rejected.
func (r *VideoJobRepository) SetHandoff(ctx context.Context, id, renderJobID string, snapshot json.RawMessage) error {
	result := r.db.WithContext(ctx).Model(&models.VideoJob{}).
		Where("id = ? AND status = ? AND (render_job_id = '' OR render_job_id = ?)",
			id, models.VideoJobStatusRunning, renderJobID).
		Updates(map[string]interface{}{
			"render_job_id":              renderJobID,
			"result":                     snapshot,
			models.VideoJobProgressField: 30,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := r.explainRejectedWrite(ctx, id); err != nil {
			return err
		}
		return ErrRenderJobIDImmutable
	}
	return nil
}

// Complete transitions a job to COMPLETED with progress 100 and the success
// payload. Rejected with ErrJobFinalized once the job is terminal, which
// makes re-delivered completion notifications no-ops.
func (r *VideoJobRepository) Complete(ctx context.Context, id string, result json.RawMessage, cloudProvider string, metadata json.RawMessage) error {
	updates := map[string]interface{}{
		models.VideoJobStatusField:   models.VideoJobStatusCompleted,
		models.VideoJobProgressField: 100,
		"result":                     result,
		"error_message":              "",
	}
	if cloudProvider != "" {
		updates["cloud_provider"] = cloudProvider
	}
	if metadata != nil {
		updates["metadata"] = metadata
	}
	return r.finalize(ctx, id, updates)
}

// Fail transitions a job to FAILED with progress 100 and the error message.
// Rejected with ErrJobFinalized once the job is terminal.
func (r *VideoJobRepository) Fail(ctx context.Context, id, errorMessage string) error {
	return r.finalize(ctx, id, map[string]interface{}{
		models.VideoJobStatusField:   models.VideoJobStatusFailed,
		models.VideoJobProgressField: 100,
		"error_message":              errorMessage,
		"result":                     nil,
	})
}

func (r *VideoJobRepository) finalize(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.VideoJob{}).
		Where("id = ? AND status NOT IN ?", id, []models.VideoJobStatus{
			models.VideoJobStatusCompleted,
			models.VideoJobStatusFailed,
		}).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := r.explainRejectedWrite(ctx, id); err != nil {
			return err
		}
		return ErrJobFinalized
	}
	return nil
}

// explainRejectedWrite distinguishes a missing job from a guarded write that
// matched no rows. It returns ErrRecordNotFound for missing jobs,
// ErrJobFinalized for terminal ones, and nil otherwise.
func (r *VideoJobRepository) explainRejectedWrite(ctx context.Context, id string) error {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return ErrJobFinalized
	}
	return nil
}
