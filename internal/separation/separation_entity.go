package separation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPendingApproval   Status = "pending_approval"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusClearancePending  Status = "clearance_pending"
	StatusExitInterview     Status = "exit_interview"
	StatusSettlementPending Status = "settlement_pending"
	StatusCompleted         Status = "completed"
)

type Type string

const (
	TypeResignation             Type = "resignation"
	TypeContractExpiry          Type = "contract_expiry"
	TypeProjectEnd              Type = "project_end"
	TypeTerminationWithoutCause Type = "termination_without_cause"
	TypeTerminationWithCause    Type = "termination_with_cause"
	TypeProbationFailed         Type = "probation_failed"
	TypeRetirement              Type = "retirement"
)

type Initiator string

const (
	InitiatedByEmployee     Initiator = "employee"
	InitiatedByOrganization Initiator = "organization"
)

type Separation struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_separation_number,priority:1;index:idx_separations_company_status"`
	SeparationNumber string    `gorm:"size:30;not null;uniqueIndex:uq_separation_number,priority:2"`

	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeName string    `gorm:"size:255;not null"`
	Department   string    `gorm:"size:255"`
	Position     string    `gorm:"size:255"`

	SeparationType   Type      `gorm:"type:varchar(40);not null"`
	InitiatedBy      Initiator `gorm:"type:varchar(20);not null"`
	RequestDate      time.Time `gorm:"type:date;not null"`
	ProposedLastDay  time.Time `gorm:"type:date;not null"`
	NoticePeriodDays int       `gorm:"not null;default:0"`
	ReasonCategory   string    `gorm:"size:100;not null"`
	ReasonDetails    string    `gorm:"type:text"`

	EligibleForCertificate bool `gorm:"not null;default:true"`
	EligibleForRehire      bool `gorm:"not null;default:true"`

	Status Status `gorm:"type:varchar(30);not null;index:idx_separations_company_status"`

	ExitInterviewDate  *time.Time `gorm:"type:date"`
	ExitInterviewer    string     `gorm:"size:255"`
	ExitInterviewNotes string     `gorm:"type:text"`

	CreatedBy string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// HasExitInterview reports whether the interview has been recorded.
func (s *Separation) HasExitInterview() bool {
	return s.ExitInterviewDate != nil
}

// StatusChange is one row of the append-only audit trail.
type StatusChange struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SeparationID uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus   Status    `gorm:"type:varchar(30);not null"`
	ToStatus     Status    `gorm:"type:varchar(30);not null"`
	Reason       string    `gorm:"type:text"`
	Actor        string    `gorm:"size:255;not null"`
	ChangedAt    time.Time `gorm:"not null"`
}

func (StatusChange) TableName() string {
	return "separation_status_changes"
}
