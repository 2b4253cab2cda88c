package worker

import (
	"context"

	"github.com/storefront-labs/storefront-api/internal/events"
	"github.com/storefront-labs/storefront-api/internal/service"
)

// StartNotificationWorker registers notification handlers and delivers queued
// events until ctx is cancelled. The returned channel closes once the queue
// has been drained.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, queue *events.QueuedDispatcher) <-chan struct{} {
	done := make(chan struct{})
	if notificationService == nil || queue == nil {
		close(done)
		return done
	}
	notificationService.RegisterHandlers()

	go func() {
		defer close(done)
		queue.Run(ctx)
	}()
	return done
}
