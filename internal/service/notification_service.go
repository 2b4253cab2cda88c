package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/events"
	"github.com/storefront-labs/storefront-api/internal/mail"
)

// NotificationService reacts to domain events with emails and push broadcasts.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Sender
	push       *PushService
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies encapsulates collaborators for notifications.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Mailer     mail.Sender
	Push       *PushService
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		mailer:     deps.Mailer,
		push:       deps.Push,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserVerified, n.handleUserVerified)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
	n.dispatcher.Subscribe(events.EventProductCreated, n.handleProductCreated)
}

func (n *NotificationService) handleUserVerified(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserVerifiedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("UserVerified", zap.String("user_id", payload.UserID))
	return nil
}

func (n *NotificationService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if n.mailer == nil {
		return nil
	}
	msg, err := mail.PasswordChangedEmail(payload.Email, payload.Name, event.Timestamp)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("password notice for %s: %w", payload.UserID, err)
	}
	n.logger.Debug("PasswordChanged notice sent", zap.String("user_id", payload.UserID), zap.String("via", payload.Via))
	return nil
}

func (n *NotificationService) handleProductCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ProductCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if !n.cfg.PushOnNewProduct || n.push == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	report, err := n.push.Broadcast(ctx, domain.PushMessage{
		Title: "New arrival",
		Body:  fmt.Sprintf("%s is now available for %s %s", payload.Name, payload.Price, payload.Currency),
		URL:   "/products/" + payload.ProductID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return nil
		}
		return err
	}
	n.logger.Info("ProductCreated broadcast",
		zap.String("product_id", payload.ProductID),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("removed", report.Removed))
	return nil
}
