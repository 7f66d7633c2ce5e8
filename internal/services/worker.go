package services

import (
	"context"
	"errors"
	"sync"

	"github.com/saymi-el/looply/internal/logger"
	"github.com/saymi-el/looply/internal/queue"
)

// LaunchWorker launches a goroutine that claims queued jobs and runs the
// pipeline for each. It exits when the context is canceled or the queue is
// closed.
func LaunchWorker(ctx context.Context, wg *sync.WaitGroup, q queue.Queue, pipeline *Pipeline, name string) {
	defer wg.Done()

	logger.Infof("Worker %s started", name)

	for {
		msg, err := q.Claim(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
				logger.Infof("Worker %s stopping", name)
				return
			}
			logger.Errorf("Worker %s claim error: %v", name, err)
			continue
		}

		if err := pipeline.Process(ctx, msg.JobID); err != nil {
			logger.WarnWithFields("Job processing failed", map[string]interface{}{
				"worker": name,
				"job_id": msg.JobID,
				"error":  err.Error(),
			})
			if nackErr := q.Nack(ctx, msg, err.Error()); nackErr != nil {
				logger.Errorf("Worker %s nack error: %v", name, nackErr)
			}
			continue
		}

		if err := q.Ack(ctx, msg); err != nil {
			logger.Errorf("Worker %s ack error: %v", name, err)
		}
	}
}
