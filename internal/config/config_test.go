package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 15*time.Minute, cfg.PaymentExpiration)
	assert.Equal(t, 5, cfg.Expiration.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Expiration.BackoffBase)
	assert.Equal(t, "@every 1m", cfg.Expiration.SweepSpec)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, int64(1000), cfg.CalendarCacheSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAYMENT_EXPIRATION", "5m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("EXPIRATION_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.PaymentExpiration)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 8, cfg.Expiration.Workers)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unparsable duration", "PAYMENT_EXPIRATION", "soon"},
		{"non-positive expiration", "PAYMENT_EXPIRATION", "0s"},
		{"zero attempts", "EXPIRATION_MAX_ATTEMPTS", "0"},
		{"backoff max below base", "EXPIRATION_BACKOFF_MAX", "10ms"},
		{"non-numeric workers", "EXPIRATION_WORKERS", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProdRequiresSecretAndRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("REDIS_ADDR", "")
	_, err = Load()
	assert.ErrorContains(t, err, "REDIS_ADDR")

	t.Setenv("REDIS_ADDR", "redis:6379")
	_, err = Load()
	assert.NoError(t, err)
}
