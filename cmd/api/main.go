package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillspark/hub-api/internal/catalog"
	"github.com/skillspark/hub-api/internal/checkout"
	"github.com/skillspark/hub-api/internal/common"
	"github.com/skillspark/hub-api/internal/config"
	"github.com/skillspark/hub-api/internal/health"
	"github.com/skillspark/hub-api/internal/obs"
	"github.com/skillspark/hub-api/internal/payment"
	"github.com/skillspark/hub-api/internal/ratelimit"
	"github.com/skillspark/hub-api/internal/resilience"
	"github.com/skillspark/hub-api/internal/security"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "hub")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:    "hub-api",
			ServiceVersion: envOrDefault("APP_VERSION", "dev"),
			Endpoint:       envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:       envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio:  sampling,
			Environment:    cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if !cfg.Gateway.Configured() {
		logger.Warn().Msg("razorpay key id or secret missing; order creation fails and verification rejects every signature")
	}

	redisClient := connectRedis(cfg, logger, metricsEnabled)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
	}

	breaker := resilience.NewBreaker(cfg.Circuit.MinRequests, cfg.Circuit.FailureRatio, cfg.Circuit.OpenFor).
		WithTarget("razorpay").
		WithLogger(logger)

	ledger := payment.Ledger{R: redisClient, TTL: cfg.Payment.VerifyReplayTTL}
	paymentSvc := &payment.Service{
		Gateway:         payment.NewRazorpay(&cfg.Gateway, breaker),
		Verifier:        payment.Verifier{Gateway: &cfg.Gateway},
		Ledger:          ledger,
		DefaultCurrency: cfg.Payment.DefaultCurrency,
	}
	paymentHandler := &payment.Handler{Svc: paymentSvc, Validate: common.NewValidator()}
	webhookHandler := payment.Webhook{
		Secret:    cfg.Gateway.WebhookSecret,
		Ledger:    ledger,
		Replay:    redisClient,
		ReplayTTL: cfg.Payment.WebhookReplayTTL,
	}

	checkoutHandler := checkout.Handler{
		Gateway:         &cfg.Gateway,
		Checkout:        cfg.Checkout,
		DefaultCurrency: cfg.Payment.DefaultCurrency,
	}

	catalogService, err := catalog.NewService()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalogService)

	idem := common.Idem{R: redisClient, TTL: cfg.Payment.IdempotencyTTL}
	verifyLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:"},
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("verify"),
			Window: cfg.Payment.VerifyRateLimitSpan,
			Max:    cfg.Payment.VerifyRateLimitMax,
		},
		OnError: func(err error) {
			logger.Error().Err(err).Msg("verify rate limiter")
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", common.IdempotencyHeader},
		ExposedHeaders:   []string{"X-Total-Count", "Retry-After"},
		AllowCredentials: len(cfg.CORSAllowedOrigins) > 0,
		MaxAge:           300,
	}))
	r.Use(security.Headers{
		Enable:     cfg.SecurityHeaders,
		EnableHSTS: cfg.AppEnv == "production",
	}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.Probes{Redis: redisClient, Gateway: &cfg.Gateway, Breaker: breaker},
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Get("/", hello)
	r.With(idem.Middleware).Post("/create-order", paymentHandler.CreateOrder)
	r.With(verifyLimit.Middleware).Post("/verify-payment", paymentHandler.Verify)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/courses", catalogHandler.Courses)
		v.Get("/courses/{id}", catalogHandler.Course)
		v.Get("/categories", catalogHandler.Categories)
		v.Get("/checkout/config", checkoutHandler.Config)

		v.Route("/payments", func(p chi.Router) {
			p.With(idem.Middleware).Post("/orders", paymentHandler.CreateOrder)
			p.With(verifyLimit.Middleware).Post("/verify", paymentHandler.Verify)
			p.Get("/{orderId}/status", paymentHandler.Status)
			p.Post("/webhook", webhookHandler.Handle)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
		return
	case <-ctx.Done():
	}

	logger.Info().Msg("shutdown requested")
	health.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	logger.Info().Msg("server stopped")
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; every
// Redis-backed feature then runs disabled.
const greeting = "Hello from Skillspark Hub backend controller!"

func hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(greeting))
}

func connectRedis(cfg *config.Config, logger zerolog.Logger, metricsEnabled bool) *redis.Client {
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set; idempotency, replay ledger and rate limiting disabled")
		return nil
	}
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error().Err(err).Msg("parse redis url")
		return nil
	}
	client := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// keep the client: readiness reports it and it may come back
		logger.Error().Err(err).Msg("ping redis")
	}
	return client
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
