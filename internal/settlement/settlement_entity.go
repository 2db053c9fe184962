package settlement

import (
	"time"

	"go-offboarding/internal/shared/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingHR       Status = "pending_hr"
	StatusPendingFinance  Status = "pending_finance"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusPaid            Status = "paid"
)

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentCash         PaymentMethod = "cash"
)

// Settlement is the final financial statement of a separation. Amounts are
// stored unscaled; rounding is applied only in responses.
type Settlement struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SeparationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_settlement_separation_active,where:deleted_at IS NULL"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeName string    `gorm:"size:255;not null"`
	Currency     string    `gorm:"size:3;not null"`

	// earnings
	SalaryDaysWorked      decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	SalaryAmount          decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	LeaveDaysEncashable   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	LeaveEncashmentAmount decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	PendingAllowances     decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	PendingReimbursements decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	GratuityAmount        decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	SeveranceAmount       decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	OtherEarnings         decimal.Decimal `gorm:"type:numeric;not null;default:0"`

	// deductions
	OutstandingAdvances  decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	TrainingBondRecovery decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	AssetDamageCharges   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	OtherDeductions      decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	TaxDeduction         decimal.Decimal `gorm:"type:numeric;not null;default:0"`

	TotalEarnings   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	TotalDeductions decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	NetPayable      decimal.Decimal `gorm:"type:numeric;not null;default:0"`

	Status Status `gorm:"type:varchar(20);not null;index"`

	CalculatedBy      string `gorm:"size:255"`
	CalculatedAt      *time.Time
	HRVerifiedBy      string `gorm:"size:255"`
	HRVerifiedAt      *time.Time
	FinanceVerifiedBy string `gorm:"size:255"`
	FinanceVerifiedAt *time.Time
	ApprovedBy        string `gorm:"size:255"`
	ApprovedAt        *time.Time

	PaymentMethod    PaymentMethod       `gorm:"type:varchar(20)"`
	PaymentReference string              `gorm:"size:100"`
	AmountPaid       decimal.NullDecimal `gorm:"type:numeric"`
	PaidAt           *time.Time

	Remarks string `gorm:"type:text"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// RecomputeTotals is the only place the three totals are written.
// Day counts are quantities and stay out of the earnings sum.
func (s *Settlement) RecomputeTotals() {
	s.TotalEarnings = money.Sum(
		s.SalaryAmount,
		s.LeaveEncashmentAmount,
		s.PendingAllowances,
		s.PendingReimbursements,
		s.GratuityAmount,
		s.SeveranceAmount,
		s.OtherEarnings,
	)
	s.TotalDeductions = money.Sum(
		s.OutstandingAdvances,
		s.TrainingBondRecovery,
		s.AssetDamageCharges,
		s.OtherDeductions,
		s.TaxDeduction,
	)
	s.NetPayable = s.TotalEarnings.Sub(s.TotalDeductions)
}
