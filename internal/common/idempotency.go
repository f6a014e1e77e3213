package common

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	redis "github.com/redis/go-redis/v9"
)

// IdempotencyHeader is the request header carrying the client supplied key.
const IdempotencyHeader = "Idempotency-Key"

// Idem provides an opt-in Idempotency-Key middleware backed by Redis. Requests
// without the header pass through untouched. A key stays claimed for TTL
// unless the request ends in a 5xx or a panic.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

func hashKey(r *http.Request, key string) string {
	return "idem:" + Sha256Hex(r.Method+" "+r.URL.Path+" "+key)
}

// Middleware enforces idempotency semantics for write endpoints.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(IdempotencyHeader)
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ttl := i.TTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		ctx := r.Context()
		key := hashKey(r, header)
		ok, err := i.R.SetNX(ctx, key, "locked", ttl).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !ok {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		completed := false
		defer func() {
			// a failed or panicking request leaves the key free for a retry
			if !completed || ww.Status() >= http.StatusInternalServerError {
				_ = i.R.Del(context.WithoutCancel(ctx), key).Err()
			}
		}()
		next.ServeHTTP(ww, r)
		completed = true
	})
}
