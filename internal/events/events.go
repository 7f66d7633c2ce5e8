// Package events provides event handling functionality
package events

import (
	"context"
	"sync"

	"github.com/saymi-el/looply/internal/logger"
)

// EventType represents the type of job lifecycle event
type EventType string

const (
	// EventJobSubmitted is emitted when a job is accepted and enqueued
	EventJobSubmitted EventType = "job_submitted"
	// EventJobHandedOff is emitted when a job is delegated to the remote renderer
	EventJobHandedOff EventType = "job_handed_off"
	// EventJobCompleted is emitted when a job reaches COMPLETED
	EventJobCompleted EventType = "job_completed"
	// EventJobFailed is emitted when a job reaches FAILED
	EventJobFailed EventType = "job_failed"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a job lifecycle event
type Event struct {
	Type        EventType // The type of event
	JobID       string    // The job ID
	OwnerID     uint      // The owner ID
	RenderJobID string    // The delegate correlation id, when handed off
	Error       string    // The failure message, for EventJobFailed
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	// handlers is a map of event types to their handlers
	handlers = make(map[EventType][]Handler)
	// handlersMu is a mutex for the handlers map
	handlersMu sync.RWMutex
	// eventChan is a channel for events
	eventChan = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed. Publishing never blocks job
// processing; when the buffer is full the event is dropped with a warning.
func Publish(event Event) {
	select {
	case eventChan <- event:
		logger.Debugf("Published event: %s (job: %s)", event.Type, event.JobID)
	default:
		logger.Warnf("Event buffer full, dropping event %s for job %s", event.Type, event.JobID)
	}
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-eventChan:
			handlersMu.RLock()
			eventHandlers := handlers[event.Type]
			handlersMu.RUnlock()

			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s for job %s: %v", e.Type, e.JobID, err)
					}
				}(handler, event)
			}
		}
	}
}
