package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-offboarding/internal/shared/contextutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

type OutboxEvent struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	RequestID     string
	AggregateType string
	AggregateID   string `gorm:"type:uuid"`
	EventType     string
	Topic         string
	Payload       []byte `gorm:"type:jsonb"`
	Status        string
	RetryCount    int
	NextRetryAt   *time.Time
	ErrorMessage  *string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

// NewOutboxEvent serializes payload into a pending outbox row. The request id is
// taken from ctx.
func NewOutboxEvent(ctx context.Context, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        OutboxStatusPending,
	}, nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *gorm.DB) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *gorm.DB) OutboxRepository {
	return &outboxRepository{db: tx}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	events := make([]OutboxEvent, 0, limit)
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{OutboxStatusPending, OutboxStatusFailed}).
		Where("next_retry_at IS NULL OR next_retry_at <= NOW()").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE outbox_events
SET
	status = ?,
	processed_at = NOW(),
	error_message = NULL,
	updated_at = NOW()
WHERE id = ?
`, OutboxStatusSent, id).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE outbox_events
SET
	status = ?,
	retry_count = retry_count + 1,
	error_message = LEFT(?, 500),
	next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
	updated_at = NOW()
WHERE id = ?
`, OutboxStatusFailed, reason, id).Error
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
