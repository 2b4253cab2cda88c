package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryDispatcherContinuesAfterFailure(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var calls []string
	d.Subscribe(EventProductCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventProductCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventUserVerified, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventProductCreated}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestQueuedDispatcherDeliversAsynchronously(t *testing.T) {
	d := NewQueuedDispatcher(4, zap.NewNop())
	got := make(chan Event, 1)
	d.Subscribe(EventPasswordChanged, func(_ context.Context, e Event) error {
		got <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	require.NoError(t, d.Publish(context.Background(), Event{ID: "e1", Type: EventPasswordChanged}))

	select {
	case e := <-got:
		assert.Equal(t, "e1", e.ID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestQueuedDispatcherRejectsWhenFull(t *testing.T) {
	d := NewQueuedDispatcher(1, zap.NewNop())
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventProductCreated}))
	assert.ErrorIs(t, d.Publish(context.Background(), Event{Type: EventProductCreated}), ErrQueueFull)
}

func TestQueuedDispatcherDrainsOnShutdown(t *testing.T) {
	d := NewQueuedDispatcher(4, zap.NewNop())
	delivered := 0
	d.Subscribe(EventProductCreated, func(context.Context, Event) error {
		delivered++
		return nil
	})
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventProductCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventProductCreated}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	assert.Equal(t, 2, delivered)
}
