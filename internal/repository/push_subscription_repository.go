package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront-labs/storefront-api/internal/domain"
)

// PushSubscriptionRepository stores browser push endpoints.
type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.PushSubscription) error
	DeleteByEndpoint(ctx context.Context, endpoint string) (bool, error)
	List(ctx context.Context) ([]domain.PushSubscription, error)
}

type pushSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPushSubscriptionRepository instantiates repository.
func NewPushSubscriptionRepository(pool *pgxpool.Pool) PushSubscriptionRepository {
	return &pushSubscriptionRepository{pool: pool}
}

// Upsert keeps one row per endpoint, refreshing keys on resubscribe.
func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *domain.PushSubscription) error {
	const query = `
        INSERT INTO push_subscriptions (endpoint, p256dh, auth)
        VALUES ($1, $2, $3)
        ON CONFLICT (endpoint) DO UPDATE SET p256dh=EXCLUDED.p256dh, auth=EXCLUDED.auth
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, sub.Endpoint, sub.P256dh, sub.Auth).Scan(&sub.ID, &sub.CreatedAt)
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE endpoint=$1`, endpoint)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *pushSubscriptionRepository) List(ctx context.Context) ([]domain.PushSubscription, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, endpoint, p256dh, auth, created_at FROM push_subscriptions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.PushSubscription
	for rows.Next() {
		var sub domain.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
