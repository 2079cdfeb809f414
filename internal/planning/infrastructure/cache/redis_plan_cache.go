package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

const (
	keyPrefix  = "gala:plan:"
	defaultTTL = 24 * time.Hour
)

// RedisPlanCache caches computed plan results in Redis, keyed by input
// fingerprint. All failures degrade to a cache miss behind a circuit
// breaker, so a flapping Redis never slows the planning path down.
type RedisPlanCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisPlanCache creates a cache. A non-positive ttl falls back to 24h.
func NewRedisPlanCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisPlanCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "redis-plan-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &RedisPlanCache{
		client:  client,
		breaker: breaker,
		ttl:     ttl,
		logger:  logger,
	}
}

// Get returns the cached result for a fingerprint, if present.
func (c *RedisPlanCache) Get(ctx context.Context, fingerprint string) (*domain.ExtendedTaskList, bool) {
	payload, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, keyPrefix+fingerprint).Bytes()
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed",
				"fingerprint", fingerprint,
				"error", err,
			)
		}
		return nil, false
	}

	result := &domain.ExtendedTaskList{}
	if err := json.Unmarshal(payload, result); err != nil {
		c.logger.Warn("cache entry corrupt; ignoring",
			"fingerprint", fingerprint,
			"error", err,
		)
		return nil, false
	}
	return result, true
}

// Set stores a result under its fingerprint. Errors are logged only.
func (c *RedisPlanCache) Set(ctx context.Context, fingerprint string, result *domain.ExtendedTaskList) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("cache set: marshalling failed", "error", err)
		return
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, keyPrefix+fingerprint, payload, c.ttl).Err()
	})
	if err != nil {
		c.logger.Warn("cache set failed",
			"fingerprint", fingerprint,
			"error", err,
		)
	}
}

// NoopPlanCache never hits; used when no Redis is configured.
type NoopPlanCache struct{}

// NewNoopPlanCache creates a cache that stores nothing.
func NewNoopPlanCache() *NoopPlanCache { return &NoopPlanCache{} }

func (NoopPlanCache) Get(ctx context.Context, fingerprint string) (*domain.ExtendedTaskList, bool) {
	return nil, false
}

func (NoopPlanCache) Set(ctx context.Context, fingerprint string, result *domain.ExtendedTaskList) {
}
