package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/events"
	"github.com/storefront-labs/storefront-api/internal/mail"
	"github.com/storefront-labs/storefront-api/internal/service"
)

type countingMailer struct {
	sent chan mail.Message
}

func (m *countingMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent <- msg
	return nil
}

func TestWorkerDeliversPasswordNotice(t *testing.T) {
	queue := events.NewQueuedDispatcher(8, zap.NewNop())
	mailer := &countingMailer{sent: make(chan mail.Message, 1)}
	notifications := service.NewNotificationService(config.NotificationConfig{}, service.NotificationDependencies{
		Dispatcher: queue,
		Mailer:     mailer,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := StartNotificationWorker(ctx, notifications, queue)

	require.NoError(t, queue.Publish(ctx, events.Event{
		Type:      events.EventPasswordChanged,
		Timestamp: time.Now(),
		Payload:   events.PasswordChangedPayload{UserID: "u1", Email: "ada@example.com", Name: "Ada", Via: "reset"},
	}))

	select {
	case msg := <-mailer.sent:
		assert.Equal(t, "ada@example.com", msg.To)
	case <-time.After(2 * time.Second):
		t.Fatal("notice was not sent")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorkerWithoutServiceIsDone(t *testing.T) {
	done := StartNotificationWorker(context.Background(), nil, nil)
	_, open := <-done
	assert.False(t, open)
}
