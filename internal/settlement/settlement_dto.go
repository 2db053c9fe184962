package settlement

import "github.com/shopspring/decimal"

type CreateSettlementRequest struct {
	SeparationID string `json:"separation_id" binding:"required,uuid"`
	Currency     string `json:"currency" binding:"omitempty,len=3"`
	Remarks      string `json:"remarks"`
}

type UpdateSettlementRequest struct {
	Currency *string `json:"currency" binding:"omitempty,len=3"`
	Remarks  *string `json:"remarks"`
}

// Earnings is a partial set of earnings. Absent fields keep their stored value.
type Earnings struct {
	SalaryDaysWorked      *decimal.Decimal `json:"salary_days_worked"`
	SalaryAmount          *decimal.Decimal `json:"salary_amount"`
	LeaveDaysEncashable   *decimal.Decimal `json:"leave_days_encashable"`
	LeaveEncashmentAmount *decimal.Decimal `json:"leave_encashment_amount"`
	PendingAllowances     *decimal.Decimal `json:"pending_allowances"`
	PendingReimbursements *decimal.Decimal `json:"pending_reimbursements"`
	GratuityAmount        *decimal.Decimal `json:"gratuity_amount"`
	SeveranceAmount       *decimal.Decimal `json:"severance_amount"`
	OtherEarnings         *decimal.Decimal `json:"other_earnings"`
}

type Deductions struct {
	OutstandingAdvances  *decimal.Decimal `json:"outstanding_advances"`
	TrainingBondRecovery *decimal.Decimal `json:"training_bond_recovery"`
	AssetDamageCharges   *decimal.Decimal `json:"asset_damage_charges"`
	OtherDeductions      *decimal.Decimal `json:"other_deductions"`
	TaxDeduction         *decimal.Decimal `json:"tax_deduction"`
}

type CalculateRequest struct {
	Earnings   Earnings   `json:"earnings"`
	Deductions Deductions `json:"deductions"`
}

type MarkPaidRequest struct {
	PaymentMethod    string           `json:"payment_method" binding:"required,oneof=bank_transfer cheque cash"`
	PaymentReference string           `json:"payment_reference" binding:"max=100"`
	AmountPaid       *decimal.Decimal `json:"amount_paid" binding:"required"`
}

type Filter struct {
	Status       string `form:"status"`
	SeparationID string `form:"separation_id"`
}

type SettlementResponse struct {
	ID           string `json:"id"`
	SeparationID string `json:"separation_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Currency     string `json:"currency"`

	SalaryDaysWorked      decimal.Decimal `json:"salary_days_worked"`
	SalaryAmount          decimal.Decimal `json:"salary_amount"`
	LeaveDaysEncashable   decimal.Decimal `json:"leave_days_encashable"`
	LeaveEncashmentAmount decimal.Decimal `json:"leave_encashment_amount"`
	PendingAllowances     decimal.Decimal `json:"pending_allowances"`
	PendingReimbursements decimal.Decimal `json:"pending_reimbursements"`
	GratuityAmount        decimal.Decimal `json:"gratuity_amount"`
	SeveranceAmount       decimal.Decimal `json:"severance_amount"`
	OtherEarnings         decimal.Decimal `json:"other_earnings"`

	OutstandingAdvances  decimal.Decimal `json:"outstanding_advances"`
	TrainingBondRecovery decimal.Decimal `json:"training_bond_recovery"`
	AssetDamageCharges   decimal.Decimal `json:"asset_damage_charges"`
	OtherDeductions      decimal.Decimal `json:"other_deductions"`
	TaxDeduction         decimal.Decimal `json:"tax_deduction"`

	TotalEarnings          decimal.Decimal `json:"total_earnings"`
	TotalDeductions        decimal.Decimal `json:"total_deductions"`
	NetPayable             decimal.Decimal `json:"net_payable"`
	TotalEarningsDisplay   string          `json:"total_earnings_display"`
	TotalDeductionsDisplay string          `json:"total_deductions_display"`
	NetPayableDisplay      string          `json:"net_payable_display"`

	Status string `json:"status"`

	CalculatedBy      string  `json:"calculated_by,omitempty"`
	CalculatedAt      *string `json:"calculated_at,omitempty"`
	HRVerifiedBy      string  `json:"hr_verified_by,omitempty"`
	HRVerifiedAt      *string `json:"hr_verified_at,omitempty"`
	FinanceVerifiedBy string  `json:"finance_verified_by,omitempty"`
	FinanceVerifiedAt *string `json:"finance_verified_at,omitempty"`
	ApprovedBy        string  `json:"approved_by,omitempty"`
	ApprovedAt        *string `json:"approved_at,omitempty"`

	PaymentMethod    string           `json:"payment_method,omitempty"`
	PaymentReference string           `json:"payment_reference,omitempty"`
	AmountPaid       *decimal.Decimal `json:"amount_paid,omitempty"`
	PaidAt           *string          `json:"paid_at,omitempty"`

	Remarks   string `json:"remarks,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type EligibilityResponse struct {
	SeparationID string `json:"separation_id"`
	Eligible     bool   `json:"eligible"`
	Reason       string `json:"reason,omitempty"`
}

// EstimateResponse is a suggestion only. Nothing is written.
type EstimateResponse struct {
	SettlementID           string          `json:"settlement_id"`
	AsOf                   string          `json:"as_of"`
	BaseSalary             decimal.Decimal `json:"base_salary"`
	DailyRate              decimal.Decimal `json:"daily_rate"`
	SalaryDaysWorked       decimal.Decimal `json:"salary_days_worked"`
	SalaryAmount           decimal.Decimal `json:"salary_amount"`
	LeaveDaysEncashable    decimal.Decimal `json:"leave_days_encashable"`
	LeaveEncashmentAmount  decimal.Decimal `json:"leave_encashment_amount"`
	SalaryAmountDisplay    string          `json:"salary_amount_display"`
	LeaveEncashmentDisplay string          `json:"leave_encashment_display"`
}
