package employeesalary

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployeeSalary is one base salary revision. The row with the latest
// EffectiveDate not after a given day is the salary in force on that day.
type EmployeeSalary struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_salary_effective,priority:1"`
	BaseSalary    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency      string          `gorm:"size:3;not null;default:IDR"`
	EffectiveDate time.Time       `gorm:"type:date;not null;index:idx_salary_effective,priority:2"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
