package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	BodyLimitBytes     int64
	SecurityHeaders    bool

	Gateway  Gateway
	Payment  Payment
	Checkout Checkout
	Circuit  Circuit
}

// Gateway carries the Razorpay credentials. It is built once at startup and
// shared by pointer between order creation and signature verification.
type Gateway struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

// Configured reports whether both the key id and the key secret are present.
func (g *Gateway) Configured() bool {
	if g == nil {
		return false
	}
	return strings.TrimSpace(g.KeyID) != "" && strings.TrimSpace(g.KeySecret) != ""
}

// Payment groups knobs for the order and verification endpoints.
type Payment struct {
	DefaultCurrency     string
	IdempotencyTTL      time.Duration
	VerifyReplayTTL     time.Duration
	WebhookReplayTTL    time.Duration
	VerifyRateLimitMax  int
	VerifyRateLimitSpan time.Duration
}

// Checkout is the public configuration handed to the checkout initiator.
type Checkout struct {
	ScriptURL  string
	BrandName  string
	ThemeColor string
}

// Circuit configures the breaker guarding gateway calls.
type Circuit struct {
	MinRequests  int
	FailureRatio float64
	OpenFor      time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "9091"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
		BodyLimitBytes:     int64(parseInt(k.String("BODY_LIMIT_BYTES"), 64*1024)),
		SecurityHeaders:    parseBoolDefault(k.String("SECURITY_HEADERS_ENABLED"), true),
		Gateway: Gateway{
			KeyID:         firstNonEmpty(k.String("RAZORPAY_KEY_ID"), k.String("razor_pay_key_id")),
			KeySecret:     firstNonEmpty(k.String("RAZORPAY_KEY_SECRET"), k.String("razor_pay_key_secret")),
			WebhookSecret: strings.TrimSpace(k.String("RAZORPAY_WEBHOOK_SECRET")),
			BaseURL:       valueOrDefault(k.String("RAZORPAY_BASE_URL"), "https://api.razorpay.com"),
			Timeout:       parseDuration(k.String("GATEWAY_TIMEOUT"), "10s"),
		},
		Payment: Payment{
			DefaultCurrency:     strings.ToUpper(valueOrDefault(k.String("PAYMENT_DEFAULT_CURRENCY"), "INR")),
			IdempotencyTTL:      parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
			VerifyReplayTTL:     parseDuration(k.String("PAYMENT_VERIFY_REPLAY_TTL"), "720h"),
			WebhookReplayTTL:    parseDuration(k.String("PAYMENT_WEBHOOK_REPLAY_TTL"), "48h"),
			VerifyRateLimitMax:  parseInt(k.String("VERIFY_RATE_LIMIT_MAX"), 30),
			VerifyRateLimitSpan: parseDuration(k.String("VERIFY_RATE_LIMIT_WINDOW"), "1m"),
		},
		Checkout: Checkout{
			ScriptURL:  valueOrDefault(k.String("CHECKOUT_SCRIPT_URL"), "https://checkout.razorpay.com/v1/checkout.js"),
			BrandName:  valueOrDefault(k.String("CHECKOUT_BRAND_NAME"), "Skillspark Hub"),
			ThemeColor: valueOrDefault(k.String("CHECKOUT_THEME_COLOR"), "#0B63FF"),
		},
		Circuit: Circuit{
			MinRequests:  parseInt(k.String("CIRCUIT_GATEWAY_MIN_REQUESTS"), 10),
			FailureRatio: parseFloat(k.String("CIRCUIT_GATEWAY_FAILURE_RATIO"), 0.5),
			OpenFor:      parseDuration(k.String("CIRCUIT_GATEWAY_OPEN_FOR"), "30s"),
		},
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "9091"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
