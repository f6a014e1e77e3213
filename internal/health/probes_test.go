package health_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/config"
	"github.com/skillspark/hub-api/internal/health"
	"github.com/skillspark/hub-api/internal/resilience"
)

func TestProbesGatewayReady(t *testing.T) {
	ctx := context.Background()

	require.Error(t, health.Probes{Gateway: &config.Gateway{KeyID: "rzp_test"}}.GatewayReady(ctx))

	gw := &config.Gateway{KeyID: "rzp_test", KeySecret: "s3cret"}
	require.NoError(t, health.Probes{Gateway: gw}.GatewayReady(ctx))

	breaker := resilience.NewBreaker(1, 0.5, time.Minute)
	breaker.Report(ctx, false)
	require.Error(t, health.Probes{Gateway: gw, Breaker: breaker}.GatewayReady(ctx))
}

func TestProbesPingRedis(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, health.Probes{}.PingRedis(ctx, 10*time.Millisecond))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, health.Probes{Redis: client}.PingRedis(ctx, time.Second))

	mr.Close()
	require.Error(t, health.Probes{Redis: client}.PingRedis(ctx, 100*time.Millisecond))
}
