package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-offboarding/internal/config"
	"go-offboarding/internal/messaging/kafka"
	"go-offboarding/internal/messaging/kafka/producer"
	"go-offboarding/internal/shared/connection"

	"go.uber.org/zap"
)

func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	if err := cfg.RequireKafka(); err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		cfg.Kafka.OutboxPollInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
