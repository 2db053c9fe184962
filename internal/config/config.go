package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Kafka      KafkaConfig
	RBAC       RBACConfig
	Clearance  ClearanceConfig
	Leave      LeaveConfig
	Settlement SettlementConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Per client IP.
	RateLimitRPS   float64
	RateLimitBurst int
}

type DatabaseConfig struct {
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	MaxRetries int
}

type RedisConfig struct {
	Addr string
}

type AuthConfig struct {
	JWTSecret string
}

type KafkaConfig struct {
	Broker             string
	ConsumerGroup      string
	OutboxPollInterval time.Duration
}

type RBACConfig struct {
	ModelPath string
}

type ClearanceConfig struct {
	DepartmentCacheTTL time.Duration
}

type LeaveConfig struct {
	AnnualEntitlementDays float64
}

type SettlementConfig struct {
	DefaultCurrency  string
	DailyRateDivisor int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("http_read_timeout", 5*time.Second)
	v.SetDefault("http_write_timeout", 10*time.Second)
	v.SetDefault("http_idle_timeout", 60*time.Second)
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_retries", 5)

	v.SetDefault("redis_addr", "localhost:6379")

	v.SetDefault("kafka_consumer_group", "go-offboarding-employee-status")
	v.SetDefault("outbox_poll_interval", 3*time.Second)

	v.SetDefault("rbac_model_path", "internal/rbac/infra/model.conf")
	v.SetDefault("clearance_cache_ttl", time.Hour)
	v.SetDefault("leave_annual_entitlement_days", 12)
	v.SetDefault("settlement_default_currency", "IDR")
	v.SetDefault("settlement_daily_rate_divisor", 30)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("port"),
			ReadTimeout:  v.GetDuration("http_read_timeout"),
			WriteTimeout: v.GetDuration("http_write_timeout"),
			IdleTimeout:  v.GetDuration("http_idle_timeout"),

			RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
			RateLimitBurst: v.GetInt("rate_limit_burst"),
		},
		Database: DatabaseConfig{
			Host:       v.GetString("db_host"),
			User:       v.GetString("db_user"),
			Password:   v.GetString("db_password"),
			Name:       v.GetString("db_name"),
			Port:       v.GetString("db_port"),
			SSLMode:    v.GetString("db_sslmode"),
			MaxRetries: v.GetInt("db_max_retries"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("redis_addr"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("jwt_secret"),
		},
		Kafka: KafkaConfig{
			Broker:             v.GetString("kafka_broker"),
			ConsumerGroup:      v.GetString("kafka_consumer_group"),
			OutboxPollInterval: v.GetDuration("outbox_poll_interval"),
		},
		RBAC: RBACConfig{
			ModelPath: v.GetString("rbac_model_path"),
		},
		Clearance: ClearanceConfig{
			DepartmentCacheTTL: v.GetDuration("clearance_cache_ttl"),
		},
		Leave: LeaveConfig{
			AnnualEntitlementDays: v.GetFloat64("leave_annual_entitlement_days"),
		},
		Settlement: SettlementConfig{
			DefaultCurrency:  v.GetString("settlement_default_currency"),
			DailyRateDivisor: v.GetInt("settlement_daily_rate_divisor"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Database.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.Database.MaxRetries < 1 {
		errs = append(errs, errors.New("DB_MAX_RETRIES must be at least 1"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Leave.AnnualEntitlementDays < 0 {
		errs = append(errs, errors.New("LEAVE_ANNUAL_ENTITLEMENT_DAYS cannot be negative"))
	}
	if c.Settlement.DailyRateDivisor < 1 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_DAILY_RATE_DIVISOR must be positive, got %d", c.Settlement.DailyRateDivisor))
	}
	if len(c.Settlement.DefaultCurrency) != 3 {
		errs = append(errs, errors.New("SETTLEMENT_DEFAULT_CURRENCY must be a 3 letter code"))
	}

	return errors.Join(errs...)
}

// RequireKafka is checked by the binaries that cannot run without a broker.
func (c *Config) RequireKafka() error {
	if c.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}
	return nil
}
