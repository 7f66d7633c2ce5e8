package queue

import (
	"context"
	"sync"
)

// DeadLetter records a message that exhausted its delivery attempts.
type DeadLetter struct {
	JobID  string
	Reason string
}

// MemoryQueue is a channel-backed Queue for development and tests.
type MemoryQueue struct {
	mu          sync.Mutex
	ch          chan *Message
	nextReceipt uint
	maxAttempts int
	dead        []DeadLetter
	closed      bool
}

// MemoryQueueOptions configures a MemoryQueue.
type MemoryQueueOptions struct {
	// Capacity bounds the number of queued messages. Enqueue fails once full.
	Capacity int
	// MaxAttempts is the delivery ceiling per message.
	MaxAttempts int
}

// NewMemoryQueue creates a MemoryQueue with the given options.
func NewMemoryQueue(opts MemoryQueueOptions) *MemoryQueue {
	if opts.Capacity <= 0 {
		opts.Capacity = 1024
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &MemoryQueue{
		ch:          make(chan *Message, opts.Capacity),
		maxAttempts: opts.MaxAttempts,
	}
}

// Enqueue adds a job reference to the queue.
func (q *MemoryQueue) Enqueue(ctx context.Context, jobID string) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.nextReceipt++
	msg := &Message{Receipt: q.nextReceipt, JobID: jobID, Attempts: 1}
	q.mu.Unlock()

	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Claim blocks until a message is available or ctx is done.
func (q *MemoryQueue) Claim(ctx context.Context) (*Message, error) {
	select {
	case msg, ok := <-q.ch:
		if !ok {
			return nil, ErrClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ack marks the message as processed.
func (q *MemoryQueue) Ack(_ context.Context, _ *Message) error {
	return nil
}

// Nack requeues the message for another attempt, or dead-letters it once the
// attempt ceiling is reached.
func (q *MemoryQueue) Nack(ctx context.Context, msg *Message, reason string) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if msg.Attempts >= q.maxAttempts {
		q.dead = append(q.dead, DeadLetter{JobID: msg.JobID, Reason: reason})
		q.mu.Unlock()
		return nil
	}
	q.mu.Unlock()

	retry := &Message{Receipt: msg.Receipt, JobID: msg.JobID, Attempts: msg.Attempts + 1}
	select {
	case q.ch <- retry:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DeadLetters returns a copy of the dead-lettered messages.
func (q *MemoryQueue) DeadLetters() []DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]DeadLetter, len(q.dead))
	copy(out, q.dead)
	return out
}

// Close stops the queue. Pending messages are discarded.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
