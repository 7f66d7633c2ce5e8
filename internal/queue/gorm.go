package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/db/models"
)

// GormQueue is a Queue backed by the work_items table. Claims are guarded
// single-row updates, so concurrent workers never receive the same message
// inside one visibility window.
type GormQueue struct {
	db           *gorm.DB
	consumer     string
	pollInterval time.Duration
	visibility   time.Duration
	maxAttempts  int
}

// GormQueueOptions configures a GormQueue.
type GormQueueOptions struct {
	// Consumer tags claims for diagnostics.
	Consumer string
	// PollInterval is the sleep between empty claim attempts.
	PollInterval time.Duration
	// Visibility is how long a claimed message stays invisible before it is
	// redelivered to another worker.
	Visibility time.Duration
	// MaxAttempts is the delivery ceiling per message.
	MaxAttempts int
}

// NewGormQueue creates a GormQueue on the given database handle.
func NewGormQueue(db *gorm.DB, opts GormQueueOptions) *GormQueue {
	if opts.Consumer == "" {
		opts.Consumer = "worker"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Visibility <= 0 {
		opts.Visibility = 5 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &GormQueue{
		db:           db,
		consumer:     opts.Consumer,
		pollInterval: opts.PollInterval,
		visibility:   opts.Visibility,
		maxAttempts:  opts.MaxAttempts,
	}
}

// Enqueue adds a job reference to the queue.
func (q *GormQueue) Enqueue(ctx context.Context, jobID string) error {
	item := &models.WorkItem{
		JobID:     jobID,
		VisibleAt: time.Now().UTC(),
	}
	return q.db.WithContext(ctx).Create(item).Error
}

// Claim polls for the oldest visible message and claims it with a guarded
// update. Blocks until a message is claimed or ctx is done.
func (q *GormQueue) Claim(ctx context.Context) (*Message, error) {
	for {
		msg, err := q.tryClaim(ctx)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}

		select {
		case <-time.After(q.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *GormQueue) tryClaim(ctx context.Context) (*Message, error) {
	now := time.Now().UTC()

	var item models.WorkItem
	err := q.db.WithContext(ctx).
		Where("done = ? AND dead = ? AND visible_at <= ?", false, false, now).
		Order("id").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// The visible_at guard loses the race cleanly if another worker claimed
	// the same row first.
	result := q.db.WithContext(ctx).Model(&models.WorkItem{}).
		Where("id = ? AND visible_at = ?", item.ID, item.VisibleAt).
		Updates(map[string]interface{}{
			"attempts":   item.Attempts + 1,
			"visible_at": now.Add(q.visibility),
			"claimed_by": q.consumer,
			"claimed_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return &Message{
		Receipt:  item.ID,
		JobID:    item.JobID,
		Attempts: item.Attempts + 1,
	}, nil
}

// Ack marks the message as processed.
func (q *GormQueue) Ack(ctx context.Context, msg *Message) error {
	result := q.db.WithContext(ctx).Model(&models.WorkItem{}).
		Where("id = ?", msg.Receipt).
		Update("done", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ack: work item %d not found", msg.Receipt)
	}
	return nil
}

// Nack makes the message immediately visible again, or dead-letters it once
// the attempt ceiling is reached.
func (q *GormQueue) Nack(ctx context.Context, msg *Message, reason string) error {
	updates := map[string]interface{}{
		"last_error": reason,
	}
	if msg.Attempts >= q.maxAttempts {
		updates["dead"] = true
	} else {
		updates["visible_at"] = time.Now().UTC()
	}

	result := q.db.WithContext(ctx).Model(&models.WorkItem{}).
		Where("id = ? AND done = ?", msg.Receipt, false).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("nack: work item %d not found or already done", msg.Receipt)
	}
	return nil
}
