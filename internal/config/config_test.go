package config_test

import (
	"testing"
	"time"

	"go-offboarding/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_NAME", "offboarding")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "IDR", cfg.Settlement.DefaultCurrency)
	assert.Equal(t, 30, cfg.Settlement.DailyRateDivisor)
	assert.Equal(t, time.Hour, cfg.Clearance.DepartmentCacheTTL)
	assert.Equal(t, 3*time.Second, cfg.Kafka.OutboxPollInterval)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "offboarding")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("SETTLEMENT_DAILY_RATE_DIVISOR", "22")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 22, cfg.Settlement.DailyRateDivisor)
	assert.Equal(t, 500*time.Millisecond, cfg.Kafka.OutboxPollInterval)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Database:   config.DatabaseConfig{Name: "offboarding", MaxRetries: 5},
			Auth:       config.AuthConfig{JWTSecret: "s3cret"},
			Leave:      config.LeaveConfig{AnnualEntitlementDays: 12},
			Settlement: config.SettlementConfig{DefaultCurrency: "IDR", DailyRateDivisor: 30},
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("collects every problem", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Name = ""
		cfg.Auth.JWTSecret = ""
		cfg.Settlement.DailyRateDivisor = 0

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_NAME is required")
		assert.Contains(t, err.Error(), "JWT_SECRET is required")
		assert.Contains(t, err.Error(), "SETTLEMENT_DAILY_RATE_DIVISOR must be positive, got 0")
	})

	t.Run("kafka only when required", func(t *testing.T) {
		cfg := valid()
		assert.Error(t, cfg.RequireKafka())
		cfg.Kafka.Broker = "localhost:9092"
		assert.NoError(t, cfg.RequireKafka())
	})
}
