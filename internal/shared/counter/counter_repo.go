package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeSeparationNumber  = "separation_number"
	TypeCertificateNumber = "certificate_number"
)

// Counter is the per-company sequence row behind document numbers.
type Counter struct {
	CompanyID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CounterType string    `gorm:"size:50;primaryKey"`
	LastValue   int64     `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

func (Counter) TableName() string {
	return "company_counters"
}

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	var nextValue int64

	// Use raw SQL for atomic UPSERT and increment to handle race conditions per company/type
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO company_counters (company_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (company_id, counter_type) DO UPDATE
		SET last_value = company_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, companyID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}

// Format renders a yearly sequence number such as SEP-2025-00042.
func Format(prefix string, at time.Time, value int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, at.Year(), value)
}
