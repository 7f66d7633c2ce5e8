package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func resetBus() {
	handlersMu.Lock()
	handlers = make(map[EventType][]Handler)
	handlersMu.Unlock()
	eventChan = make(chan Event, EventChannelSize)
}

func TestSubscribeAndPublish(t *testing.T) {
	resetBus()

	var wg sync.WaitGroup
	wg.Add(1)

	var mu sync.Mutex
	var received Event
	Subscribe(EventJobCompleted, func(_ context.Context, event Event) error {
		mu.Lock()
		received = event
		mu.Unlock()
		wg.Done()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	Start(ctx)

	Publish(Event{Type: EventJobCompleted, JobID: "job-1", OwnerID: 7})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, EventJobCompleted, received.Type)
	assert.Equal(t, "job-1", received.JobID)
	assert.Equal(t, uint(7), received.OwnerID)
}

func TestPublishWithoutHandlersDoesNotBlock(t *testing.T) {
	resetBus()

	done := make(chan struct{})
	go func() {
		for i := 0; i < EventChannelSize+10; i++ {
			Publish(Event{Type: EventJobFailed, JobID: "job-x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with a full buffer")
	}
}

func TestHandlersAreScopedToEventType(t *testing.T) {
	resetBus()

	var wg sync.WaitGroup
	wg.Add(1)

	var calls sync.Map
	Subscribe(EventJobFailed, func(_ context.Context, event Event) error {
		calls.Store(event.JobID, true)
		wg.Done()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	Start(ctx)

	Publish(Event{Type: EventJobCompleted, JobID: "ignored"})
	Publish(Event{Type: EventJobFailed, JobID: "handled"})
	wg.Wait()

	_, ok := calls.Load("handled")
	assert.True(t, ok)
	_, ok = calls.Load("ignored")
	assert.False(t, ok)
}
