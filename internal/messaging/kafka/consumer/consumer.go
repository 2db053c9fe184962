package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	employeeerrors "go-offboarding/internal/employee/errors"
	"go-offboarding/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const statusCompleted = "completed"

// MessageReader is the part of *kafkago.Reader the consumer loop needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// EmployeeStatusUpdater flips the employee's employment status flag.
type EmployeeStatusUpdater interface {
	MarkSeparated(ctx context.Context, companyID, employeeID string, at time.Time) error
}

func ConsumeSeparationLifecycle(
	ctx context.Context,
	reader MessageReader,
	employees EmployeeStatusUpdater,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.separation_lifecycle")
	log.Info("separation lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("separation lifecycle consumer stopped")
				return
			}
			log.Error("fetch separation lifecycle message failed", zap.Error(err))
			continue
		}

		if err := HandleSeparationEvent(ctx, msg.Value, employees, log); err != nil {
			// Tidak di-commit supaya dibaca ulang
			log.Error("handle separation event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit separation lifecycle message failed", zap.Error(err))
		}
	}
}

// HandleSeparationEvent marks the employee separated when a separation reaches
// completed. Undecodable messages, other transitions and unknown employees are
// acknowledged without action; only store failures are returned for redelivery.
func HandleSeparationEvent(
	ctx context.Context,
	value []byte,
	employees EmployeeStatusUpdater,
	log *zap.Logger,
) error {
	var event events.StatusChangedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Error("decode separation event failed", zap.Error(err))
		return nil
	}

	if event.EventType != events.SeparationStatusChanged || event.ToStatus != statusCompleted {
		log.Debug("separation event ignored",
			zap.String("separation_id", event.SeparationID),
			zap.String("to_status", event.ToStatus),
		)
		return nil
	}

	err := employees.MarkSeparated(ctx, event.CompanyID, event.EmployeeID, event.OccurredAt)
	if errors.Is(err, employeeerrors.ErrEmployeeNotFound) {
		log.Warn("separated employee not found, skipping",
			zap.String("employee_id", event.EmployeeID),
			zap.String("company_id", event.CompanyID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("employee marked separated from separation_status_changed event",
		zap.String("separation_id", event.SeparationID),
		zap.String("employee_id", event.EmployeeID),
		zap.String("company_id", event.CompanyID),
		zap.String("request_id", event.RequestID),
	)
	return nil
}
