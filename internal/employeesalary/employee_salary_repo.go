package employeesalary

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_salary_repo.go -destination=mock/employee_salary_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindEffective(ctx context.Context, companyID, employeeID string, asOf time.Time) (*EmployeeSalary, error)
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

// FindEffective returns the latest salary row whose effective date is on or before asOf.
func (r *repository) FindEffective(ctx context.Context, companyID, employeeID string, asOf time.Time) (*EmployeeSalary, error) {
	var salary EmployeeSalary
	err := r.db.WithContext(ctx).
		Table("employee_salaries").
		Select("employee_salaries.*").
		Joins("JOIN employees ON employees.id = employee_salaries.employee_id").
		Where("employee_salaries.employee_id = ?", employeeID).
		Where("employees.company_id = ?", companyID).
		Where("employee_salaries.effective_date <= ?", asOf).
		Order("employee_salaries.effective_date DESC, employee_salaries.created_at DESC").
		First(&salary).Error
	if err != nil {
		return nil, err
	}
	return &salary, nil
}
