package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-offboarding/internal/config"
	"go-offboarding/internal/employee"
	"go-offboarding/internal/events"
	"go-offboarding/internal/messaging/kafka/consumer"
	"go-offboarding/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

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

	employeeRepo := employee.NewRepository(gormDB)
	employeeService := employee.NewService(gormDB, employeeRepo)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.SeparationTopic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeSeparationLifecycle(ctx, reader, employeeService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
