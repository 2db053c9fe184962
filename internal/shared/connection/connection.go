package connection

import (
	"context"
	"fmt"
	"time"

	"go-offboarding/internal/config"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const retryDelay = 5 * time.Second

func ConnectGORMWithRetry(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logger := zap.L().Named("connection.postgres")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)

	var lastErr error

	for i := 1; i <= cfg.MaxRetries; i++ {

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			lastErr = err
			logger.Warn("gorm open failed", zap.Int("attempt", i), zap.Int("max", cfg.MaxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			logger.Warn("get sql.DB failed", zap.Int("attempt", i), zap.Int("max", cfg.MaxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			logger.Warn("db ping failed", zap.Int("attempt", i), zap.Int("max", cfg.MaxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		// Pool config
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		logger.Info("gorm connected to database")
		return db, nil
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", cfg.MaxRetries, lastErr)
}

func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	logger := zap.L().Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		lastErr = rdb.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			logger.Info("connected to redis")
			return rdb, nil
		}

		logger.Warn("redis ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(lastErr))
		time.Sleep(retryDelay)
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("failed to connect redis: %w", lastErr)
}

// ConnectKafkaWithRetry waits until the broker accepts connections and returns a
// writer that routes each message by its own Topic field.
func ConnectKafkaWithRetry(broker string, maxRetries int) (*kafkago.Writer, error) {
	logger := zap.L().Named("connection.kafka")

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		conn, err := kafkago.Dial("tcp", broker)
		if err == nil {
			_, lastErr = conn.Brokers()
			_ = conn.Close()
			if lastErr == nil {
				logger.Info("connected to kafka", zap.String("broker", broker))
				return &kafkago.Writer{
					Addr:                   kafkago.TCP(broker),
					Balancer:               &kafkago.Hash{},
					RequiredAcks:           kafkago.RequireAll,
					AllowAutoTopicCreation: true,
					BatchTimeout:           50 * time.Millisecond,
				}, nil
			}
		} else {
			lastErr = err
		}

		logger.Warn("kafka dial failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(lastErr))
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect kafka %s: %w", broker, lastErr)
}
