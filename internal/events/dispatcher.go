package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when the queued dispatcher cannot accept more events.
var ErrQueueFull = errors.New("event queue full")

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher that runs handlers inline.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	return newInMemory(logger)
}

func newInMemory(logger *zap.Logger) *inMemoryDispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
	}
}

// Publish synchronously invokes handlers for the given event. A failing
// handler is logged and does not stop the others.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// QueuedDispatcher buffers events and delivers them from Run, so publishers
// never wait on slow handlers such as SMTP or push fan-out.
type QueuedDispatcher struct {
	inner *inMemoryDispatcher
	queue chan Event
}

// NewQueuedDispatcher creates a dispatcher with a bounded queue.
func NewQueuedDispatcher(size int, logger *zap.Logger) *QueuedDispatcher {
	if size <= 0 {
		size = 64
	}
	return &QueuedDispatcher{inner: newInMemory(logger), queue: make(chan Event, size)}
}

// Publish enqueues the event without blocking.
func (d *QueuedDispatcher) Publish(_ context.Context, event Event) error {
	select {
	case d.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers a handler for the given event type.
func (d *QueuedDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.inner.Subscribe(eventType, handler)
}

// Run delivers queued events until ctx is cancelled, then drains what is left.
func (d *QueuedDispatcher) Run(ctx context.Context) {
	for {
		select {
		case event := <-d.queue:
			_ = d.inner.Publish(ctx, event)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *QueuedDispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			_ = d.inner.Publish(context.Background(), event)
		default:
			return
		}
	}
}
