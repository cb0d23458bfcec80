package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "file:ignitegigs.db?_pragma=busy_timeout(5000)"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTTTL           = "24h"
	defaultAppURL           = "http://localhost:8080"
	defaultCurrency         = "gbp"
	defaultStripeAPIBase    = "https://api.stripe.com"
	defaultWebhookTolerance = "5m"
	defaultGatewayTimeout   = "15s"
	defaultGatewayRPS       = "10"
	defaultEmailFrom        = "IgniteGigs <bookings@ignitegigs.com>"
	defaultRefundBatch      = "50"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	AppURL   string
	Currency string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIBase       string
	WebhookTolerance    time.Duration
	GatewayTimeout      time.Duration
	GatewayRPS          float64

	ResendAPIKey string
	EmailFrom    string

	RefundBatch int

	CORSAllowedOrigins []string
	InternalToken      string
	InternalAllowedIPs []string
}

// Load reads the configuration from the environment. Call godotenv first if
// a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat(cfg.AppEnv)))
	cfg.AppURL = strings.TrimRight(strings.TrimSpace(getEnv("APP_URL", defaultAppURL)), "/")
	cfg.Currency = strings.ToLower(strings.TrimSpace(getEnv("CURRENCY", defaultCurrency)))
	cfg.StripeSecretKey = strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	cfg.StripeWebhookSecret = strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET"))
	cfg.StripeAPIBase = strings.TrimRight(strings.TrimSpace(getEnv("STRIPE_API_BASE", defaultStripeAPIBase)), "/")
	cfg.ResendAPIKey = strings.TrimSpace(os.Getenv("RESEND_API_KEY"))
	cfg.EmailFrom = strings.TrimSpace(getEnv("EMAIL_FROM", defaultEmailFrom))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.InternalToken = strings.TrimSpace(os.Getenv("INTERNAL_TOKEN"))
	cfg.InternalAllowedIPs = splitList(os.Getenv("INTERNAL_ALLOWED_IPS"))

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.WebhookTolerance, err = parseDurationEnv("WEBHOOK_TOLERANCE", defaultWebhookTolerance); err != nil {
		return nil, err
	}
	if cfg.GatewayTimeout, err = parseDurationEnv("GATEWAY_TIMEOUT", defaultGatewayTimeout); err != nil {
		return nil, err
	}
	if cfg.GatewayRPS, err = parseFloatEnv("GATEWAY_RPS", defaultGatewayRPS); err != nil {
		return nil, err
	}
	if cfg.RefundBatch, err = parseIntEnv("REFUND_BATCH", defaultRefundBatch); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.WebhookTolerance <= 0 {
		return fmt.Errorf("WEBHOOK_TOLERANCE must be > 0")
	}
	if cfg.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be > 0")
	}
	if cfg.GatewayRPS <= 0 {
		return fmt.Errorf("GATEWAY_RPS must be > 0")
	}
	if cfg.RefundBatch <= 0 {
		return fmt.Errorf("REFUND_BATCH must be > 0")
	}
	if len(cfg.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a three-letter ISO code")
	}

	if cfg.IsProdLike() {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.StripeSecretKey == "" {
			return fmt.Errorf("in prod/release STRIPE_SECRET_KEY must be set")
		}
		if cfg.StripeWebhookSecret == "" {
			return fmt.Errorf("in prod/release STRIPE_WEBHOOK_SECRET must be set")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool { return isProdLike(c.AppEnv) }

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func defaultLogFormat(env string) string {
	if isProdLike(env) {
		return "json"
	}
	return "console"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
