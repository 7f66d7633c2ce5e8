// Package queue provides the at-least-once work queue feeding the worker
// pool. One message is delivered per claim; a message that is neither acked
// nor nacked becomes deliverable again after its visibility window expires.
package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned by queue operations after Close.
var ErrClosed = errors.New("queue is closed")

// DefaultMaxAttempts is the delivery ceiling before a message is dead-lettered.
const DefaultMaxAttempts = 1

// Message is one in-flight work item claimed by a worker.
type Message struct {
	// Receipt identifies this delivery to the backend for Ack/Nack.
	Receipt uint
	// JobID references the video job to process.
	JobID string
	// Attempts counts deliveries of this message, including the current one.
	Attempts int
}

// Queue is the contract the orchestrator needs from a work queue: durable
// enqueue, exclusive single-message claims, and redelivery on failure.
type Queue interface {
	// Enqueue adds a job reference to the queue.
	Enqueue(ctx context.Context, jobID string) error
	// Claim blocks until a message is available or ctx is done. Each message
	// is delivered to exactly one claimer at a time.
	Claim(ctx context.Context) (*Message, error)
	// Ack marks the message as processed; it will not be redelivered.
	Ack(ctx context.Context, msg *Message) error
	// Nack reports failed processing. The message is redelivered until its
	// attempt ceiling is reached, then dead-lettered.
	Nack(ctx context.Context, msg *Message, reason string) error
}
