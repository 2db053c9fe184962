package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive    = "ACTIVE"
	StatusSeparated = "SEPARATED"
)

type Employee struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;index"`
	DepartmentID     *uuid.UUID `gorm:"type:uuid"`
	PositionID       *uuid.UUID `gorm:"type:uuid"`
	EmployeeNumber   string     `gorm:"size:50"`
	FullName         string
	Email            string    `gorm:"uniqueIndex"`
	HireDate         time.Time `gorm:"type:date"`
	EmploymentStatus string    `gorm:"size:20;not null;default:ACTIVE"`
	SeparatedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// Snapshot is the directory view copied onto a separation, settlement or
// certificate when it is created.
type Snapshot struct {
	EmployeeID       string
	EmployeeNumber   string
	FullName         string
	DepartmentName   string
	PositionTitle    string
	HireDate         time.Time
	EmploymentStatus string
}
