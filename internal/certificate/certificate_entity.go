package certificate

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusIssued  Status = "issued"
	StatusRevoked Status = "revoked"
)

type Type string

const (
	TypeWorkCertificate    Type = "work_certificate"
	TypeExperienceLetter   Type = "experience_letter"
	TypeServiceCertificate Type = "service_certificate"
)

var AllTypes = []Type{TypeWorkCertificate, TypeExperienceLetter, TypeServiceCertificate}

type Certificate struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_certificate_number,priority:1"`
	CertificateNumber string    `gorm:"size:30;not null;uniqueIndex:uq_certificate_number,priority:2"`

	// at most one non-revoked certificate per type and separation
	SeparationID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_certificate_active_type,priority:1,where:status <> 'revoked' AND deleted_at IS NULL"`
	EmployeeID      uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeName    string    `gorm:"size:255;not null"`
	CertificateType Type      `gorm:"type:varchar(30);not null;uniqueIndex:uq_certificate_active_type,priority:2"`

	PositionTitle       string    `gorm:"size:255"`
	Department          string    `gorm:"size:255"`
	EmploymentStartDate time.Time `gorm:"type:date;not null"`
	EmploymentEndDate   time.Time `gorm:"type:date;not null"`
	DutiesSummary       string    `gorm:"type:text"`
	SignatoryName       string    `gorm:"size:255"`
	SignatoryTitle      string    `gorm:"size:255"`

	Status           Status `gorm:"type:varchar(20);not null;index"`
	IssueDate        *time.Time
	IssuedBy         string `gorm:"size:255"`
	RevokedAt        *time.Time
	RevokedBy        string `gorm:"size:255"`
	RevocationReason string `gorm:"type:text"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Certificate) TableName() string {
	return "work_certificates"
}
