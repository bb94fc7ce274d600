package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr            = ":8000"
	defaultDatabaseURL         = "file:rental.db?cache=shared"
	defaultJWTSecret           = "change-me-jwt-secret"
	defaultNotificationTopic   = "payment-notifications"
	defaultPaymentExpiration   = "15m"
	defaultMaxAttempts         = "5"
	defaultBackoffBase         = "1s"
	defaultBackoffMax          = "1m"
	defaultPollInterval        = "1s"
	defaultVisibilityTimeout   = "30s"
	defaultExpirationWorkers   = "4"
	defaultSweepSpec           = "@every 1m"
	defaultCalendarCacheTTL    = "5m"
	defaultCalendarCacheSize   = "1000"
	defaultNotificationBufSize = "256"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string

	// Empty InternalToken disables the /internal routes.
	InternalToken      string
	CORSAllowedOrigins []string

	// Empty RedisAddr selects the in-process expiration queue.
	RedisAddr string
	// Empty KafkaBrokers disables event publication.
	KafkaBrokers          []string
	NotificationTopic     string
	NotificationBufferLen int

	PaymentExpiration time.Duration
	Expiration        ExpirationConfig

	CalendarCacheTTL  time.Duration
	CalendarCacheSize int64
}

type ExpirationConfig struct {
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	PollInterval      time.Duration
	VisibilityTimeout time.Duration
	Workers           int
	SweepSpec         string
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.InternalToken = strings.TrimSpace(os.Getenv("INTERNAL_TOKEN"))
	cfg.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.KafkaBrokers = splitCSV(os.Getenv("KAFKA_BROKERS"))
	cfg.NotificationTopic = strings.TrimSpace(getEnv("NOTIFICATION_TOPIC", defaultNotificationTopic))
	cfg.Expiration.SweepSpec = strings.TrimSpace(getEnv("EXPIRATION_SWEEP_SPEC", defaultSweepSpec))

	var err error
	durations := []struct {
		name, fallback string
		dst            *time.Duration
	}{
		{"PAYMENT_EXPIRATION", defaultPaymentExpiration, &cfg.PaymentExpiration},
		{"EXPIRATION_BACKOFF_BASE", defaultBackoffBase, &cfg.Expiration.BackoffBase},
		{"EXPIRATION_BACKOFF_MAX", defaultBackoffMax, &cfg.Expiration.BackoffMax},
		{"EXPIRATION_POLL_INTERVAL", defaultPollInterval, &cfg.Expiration.PollInterval},
		{"EXPIRATION_VISIBILITY_TIMEOUT", defaultVisibilityTimeout, &cfg.Expiration.VisibilityTimeout},
		{"CALENDAR_CACHE_TTL", defaultCalendarCacheTTL, &cfg.CalendarCacheTTL},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationEnv(d.name, d.fallback); err != nil {
			return nil, err
		}
	}

	if cfg.Expiration.MaxAttempts, err = parseIntEnv("EXPIRATION_MAX_ATTEMPTS", defaultMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.Expiration.Workers, err = parseIntEnv("EXPIRATION_WORKERS", defaultExpirationWorkers); err != nil {
		return nil, err
	}
	if cfg.NotificationBufferLen, err = parseIntEnv("NOTIFICATION_BUFFER", defaultNotificationBufSize); err != nil {
		return nil, err
	}
	cacheSize, err := parseIntEnv("CALENDAR_CACHE_SIZE", defaultCalendarCacheSize)
	if err != nil {
		return nil, err
	}
	cfg.CalendarCacheSize = int64(cacheSize)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s payment_expiration=%s redis=%t kafka=%t", cfg.AppEnv, cfg.PaymentExpiration, cfg.RedisAddr != "", len(cfg.KafkaBrokers) > 0)

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.PaymentExpiration <= 0 {
		return fmt.Errorf("PAYMENT_EXPIRATION must be > 0")
	}
	if cfg.Expiration.MaxAttempts < 1 {
		return fmt.Errorf("EXPIRATION_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.Expiration.BackoffBase <= 0 {
		return fmt.Errorf("EXPIRATION_BACKOFF_BASE must be > 0")
	}
	if cfg.Expiration.BackoffMax < cfg.Expiration.BackoffBase {
		return fmt.Errorf("EXPIRATION_BACKOFF_MAX must be >= EXPIRATION_BACKOFF_BASE")
	}
	if cfg.Expiration.PollInterval <= 0 {
		return fmt.Errorf("EXPIRATION_POLL_INTERVAL must be > 0")
	}
	if cfg.Expiration.VisibilityTimeout <= 0 {
		return fmt.Errorf("EXPIRATION_VISIBILITY_TIMEOUT must be > 0")
	}
	if cfg.Expiration.Workers < 1 {
		return fmt.Errorf("EXPIRATION_WORKERS must be >= 1")
	}
	if cfg.Expiration.SweepSpec == "" {
		return fmt.Errorf("EXPIRATION_SWEEP_SPEC must not be empty")
	}
	if cfg.CalendarCacheTTL <= 0 {
		return fmt.Errorf("CALENDAR_CACHE_TTL must be > 0")
	}
	if cfg.CalendarCacheSize < 1 {
		return fmt.Errorf("CALENDAR_CACHE_SIZE must be >= 1")
	}
	if cfg.NotificationBufferLen < 1 {
		return fmt.Errorf("NOTIFICATION_BUFFER must be >= 1")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.NotificationTopic == "" {
		return fmt.Errorf("NOTIFICATION_TOPIC must be set when KAFKA_BROKERS is set")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.RedisAddr == "" {
			return fmt.Errorf("in prod/release REDIS_ADDR must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
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

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
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
