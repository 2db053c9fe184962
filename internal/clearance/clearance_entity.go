package clearance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusInProgress  Status = "in_progress"
	StatusCleared     Status = "cleared"
	StatusIssuesFound Status = "issues_found"
)

// Clearance is one department's sign-off for a separation.
type Clearance struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SeparationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_clearance_department,priority:1"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_clearance_department,priority:2"`

	DepartmentName string `gorm:"size:255;not null"`
	SortOrder      int    `gorm:"not null;default:0"`
	Status         Status `gorm:"type:varchar(20);not null;index"`

	OutstandingItems []string   `gorm:"type:jsonb;serializer:json"`
	Notes            string     `gorm:"type:text"`
	ClearanceDate    *time.Time
	ClearedBy        string `gorm:"size:255"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
