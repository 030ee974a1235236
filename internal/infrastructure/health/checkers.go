package health

import (
	"context"

	"github.com/glamweave/dyebudget/internal/core/ports"
	"github.com/go-redis/redis/v8"
)

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// marketAPIHealthChecker probes the pricing source via its worlds endpoint.
type marketAPIHealthChecker struct{ source ports.PriceSource }

func (m *marketAPIHealthChecker) Name() string { return "market_api" }
func (m *marketAPIHealthChecker) Check(ctx context.Context) error {
	_, err := m.source.FetchWorlds(ctx)
	return err
}

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewMarketAPIHealthChecker creates a health checker for the pricing source.
func NewMarketAPIHealthChecker(source ports.PriceSource) ports.HealthChecker {
	return &marketAPIHealthChecker{source: source}
}
