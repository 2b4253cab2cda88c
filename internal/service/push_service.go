package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/observability"
	"github.com/storefront-labs/storefront-api/internal/repository"
)

const defaultPushConcurrency = 16

// Pusher delivers one encrypted message to one subscription.
type Pusher interface {
	PublicKey() string
	Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error
}

// goneError is implemented by delivery errors that mean the endpoint is dead.
type goneError interface {
	Gone() bool
}

// PushService stores subscriptions and fans out notifications.
type PushService struct {
	subs        repository.PushSubscriptionRepository
	pusher      Pusher
	metrics     *observability.Metrics
	logger      *zap.Logger
	concurrency int
}

// PushDependencies encapsulates collaborators for the push service.
type PushDependencies struct {
	SubscriptionRepo repository.PushSubscriptionRepository
	Pusher           Pusher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
	Concurrency      int
}

// NewPushService constructs the service. A nil Pusher disables delivery.
func NewPushService(deps PushDependencies) *PushService {
	s := &PushService{
		subs:        deps.SubscriptionRepo,
		pusher:      deps.Pusher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		concurrency: deps.Concurrency,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultPushConcurrency
	}
	return s
}

// VAPIDPublicKey returns the key browsers need to subscribe.
func (s *PushService) VAPIDPublicKey() (string, error) {
	if s.pusher == nil {
		return "", domain.ErrNotConfigured
	}
	return s.pusher.PublicKey(), nil
}

// Subscribe stores or refreshes a subscription keyed by endpoint.
func (s *PushService) Subscribe(ctx context.Context, sub domain.PushSubscription) (*domain.PushSubscription, error) {
	sub.Endpoint = strings.TrimSpace(sub.Endpoint)
	if !strings.HasPrefix(sub.Endpoint, "https://") && !strings.HasPrefix(sub.Endpoint, "http://") {
		return nil, domain.NewValidation("Subscription endpoint must be a URL", "endpoint")
	}
	if sub.P256dh == "" || sub.Auth == "" {
		return nil, domain.NewValidation("Subscription keys are required", "keys.p256dh", "keys.auth")
	}
	if err := s.subs.Upsert(ctx, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Unsubscribe removes a subscription.
func (s *PushService) Unsubscribe(ctx context.Context, endpoint string) error {
	removed, err := s.subs.DeleteByEndpoint(ctx, strings.TrimSpace(endpoint))
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound
	}
	return nil
}

// Broadcast sends msg to every subscription concurrently. Each delivery is
// independent; endpoints the push service reports as gone are deleted.
func (s *PushService) Broadcast(ctx context.Context, msg domain.PushMessage) (domain.PushReport, error) {
	if s.pusher == nil {
		return domain.PushReport{}, domain.ErrNotConfigured
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return domain.PushReport{}, err
	}
	subs, err := s.subs.List(ctx)
	if err != nil {
		return domain.PushReport{}, err
	}

	var (
		mu     sync.Mutex
		report domain.PushReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			outcome := s.deliver(gctx, sub, payload)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeSent:
				report.Sent++
			case outcomeRemoved:
				report.Removed++
			default:
				report.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.metrics.RecordPush("sent", report.Sent)
	s.metrics.RecordPush("failed", report.Failed)
	s.metrics.RecordPush("removed", report.Removed)
	return report, nil
}

type deliveryOutcome int

const (
	outcomeSent deliveryOutcome = iota
	outcomeFailed
	outcomeRemoved
)

func (s *PushService) deliver(ctx context.Context, sub domain.PushSubscription, payload []byte) deliveryOutcome {
	err := s.pusher.Send(ctx, sub, payload)
	if err == nil {
		return outcomeSent
	}

	var gone goneError
	if errors.As(err, &gone) && gone.Gone() {
		if _, delErr := s.subs.DeleteByEndpoint(ctx, sub.Endpoint); delErr != nil {
			s.logger.Warn("failed to purge push subscription", zap.String("subscription_id", sub.ID), zap.Error(delErr))
			return outcomeFailed
		}
		s.logger.Info("purged expired push subscription", zap.String("subscription_id", sub.ID))
		return outcomeRemoved
	}

	s.logger.Warn("push delivery failed", zap.String("subscription_id", sub.ID), zap.Error(err))
	return outcomeFailed
}
