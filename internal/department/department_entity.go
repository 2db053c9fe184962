package department

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name              string         `gorm:"size:255;not null"`
	Description       string         `gorm:"type:text"`
	CompanyID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	RequiresClearance bool           `gorm:"not null;default:false"`
	IsActive          bool           `gorm:"not null;default:true"`
	ClearanceOrder    int            `gorm:"not null;default:0"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// ClearanceDepartment is the cached projection the clearance tracker consumes.
type ClearanceDepartment struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}
