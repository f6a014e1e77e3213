package health

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/skillspark/hub-api/internal/config"
	"github.com/skillspark/hub-api/internal/resilience"
)

var (
	errGatewayNotConfigured = errors.New("gateway credentials missing")
	errGatewayCircuitOpen   = errors.New("gateway circuit open")
)

// Probes is the production Checker. Redis is optional; a nil client counts as
// healthy because every Redis-backed feature degrades to disabled.
type Probes struct {
	Redis   *redis.Client
	Gateway *config.Gateway
	Breaker *resilience.Breaker
}

// PingRedis pings the configured Redis client.
func (p Probes) PingRedis(ctx context.Context, timeout time.Duration) error {
	if p.Redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Redis.Ping(ctx).Err()
}

// GatewayReady fails when credentials are missing or the breaker is open.
func (p Probes) GatewayReady(context.Context) error {
	if !p.Gateway.Configured() {
		return errGatewayNotConfigured
	}
	if p.Breaker != nil && p.Breaker.State() == resilience.Open {
		return errGatewayCircuitOpen
	}
	return nil
}
