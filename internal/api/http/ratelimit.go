package http

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/observability"
	apperrors "github.com/storefront-labs/storefront-api/pkg/util"
)

const localVisitorLimit = 10000

// RateLimiter caps requests per client IP. Counts live in a Redis fixed
// window shared by every instance; when Redis is absent or failing each
// instance falls back to its own token bucket per IP.
type RateLimiter struct {
	rdb     *redis.Client
	max     int
	window  time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a limiter; rdb may be nil.
func NewRateLimiter(rdb *redis.Client, cfg config.RateLimitConfig, metrics *observability.Metrics, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		rdb:      rdb,
		max:      cfg.MaxRequests,
		window:   cfg.Window(),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Handler limits requests under scope.
func (l *RateLimiter) Handler(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, remaining := l.allow(c.UserContext(), scope, c.IP())
		c.Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		if remaining >= 0 {
			c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}
		if !allowed {
			l.metrics.RecordRateLimited()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(l.window.Seconds())))
			return apperrors.NewTooManyRequests("Too many requests, please try again later.")
		}
		return c.Next()
	}
}

// allow reports whether the request fits and, when known, how many remain.
func (l *RateLimiter) allow(ctx context.Context, scope, ip string) (bool, int) {
	if l.rdb != nil {
		count, err := l.incr(ctx, scope, ip)
		if err == nil {
			remaining := l.max - int(count)
			if remaining < 0 {
				remaining = 0
			}
			return count <= int64(l.max), remaining
		}
		l.logger.Warn("rate limit store unavailable, using local limiter", zap.Error(err))
	}
	return l.allowLocal(scope + "|" + ip), -1
}

func (l *RateLimiter) incr(ctx context.Context, scope, ip string) (int64, error) {
	slot := l.now().UnixNano() / int64(l.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, ip, slot)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RateLimiter) allowLocal(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.visitors) >= localVisitorLimit {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.window {
				delete(l.visitors, k)
			}
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		every := l.window / time.Duration(l.max)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), l.max)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}
