package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/skillspark/hub-api/internal/common"
)

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the process-wide readiness flag. The server clears it when
// shutdown begins so load balancers stop routing new traffic.
func SetReady(v bool) {
	ready.Store(v)
}

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingRedis(ctx context.Context, timeout time.Duration) error
	GatewayReady(ctx context.Context) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	redisStatus := "ok"
	if err := h.Checker.PingRedis(ctx, h.redisTimeout()); err != nil {
		redisStatus = err.Error()
	}
	gatewayStatus := "ok"
	if err := h.Checker.GatewayReady(ctx); err != nil {
		gatewayStatus = err.Error()
	}
	status := map[string]string{
		"redis":   redisStatus,
		"gateway": gatewayStatus,
	}
	code := http.StatusOK
	if redisStatus != "ok" || gatewayStatus != "ok" {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
