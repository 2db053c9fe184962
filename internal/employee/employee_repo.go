package employee

import (
	"context"
	"time"

	"go-offboarding/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	FindSnapshot(ctx context.Context, companyID string, id string) (*Snapshot, error)
	MarkSeparated(ctx context.Context, companyID string, id string, at time.Time) (bool, error)
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

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&emp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

type snapshotRow struct {
	ID               string
	EmployeeNumber   string
	FullName         string
	DepartmentName   string
	PositionTitle    string
	HireDate         time.Time
	EmploymentStatus string
}

func (r *repository) FindSnapshot(ctx context.Context, companyID string, id string) (*Snapshot, error) {
	var row snapshotRow
	err := r.db.WithContext(ctx).
		Table("employees").
		Select(`employees.id, employees.employee_number, employees.full_name,
			COALESCE(departments.name, '') AS department_name,
			COALESCE(positions.name, '') AS position_title,
			employees.hire_date, employees.employment_status`).
		Joins("LEFT JOIN departments ON departments.id = employees.department_id AND departments.deleted_at IS NULL").
		Joins("LEFT JOIN positions ON positions.id = employees.position_id AND positions.deleted_at IS NULL").
		Where("employees.company_id = ? AND employees.id = ?", companyID, id).
		Where("employees.deleted_at IS NULL").
		Take(&row).Error
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		EmployeeID:       row.ID,
		EmployeeNumber:   row.EmployeeNumber,
		FullName:         row.FullName,
		DepartmentName:   row.DepartmentName,
		PositionTitle:    row.PositionTitle,
		HireDate:         row.HireDate,
		EmploymentStatus: row.EmploymentStatus,
	}, nil
}

// MarkSeparated flips the employment status flag. It reports false when the
// employee was already separated.
func (r *repository) MarkSeparated(ctx context.Context, companyID string, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND employment_status <> ?", id, StatusSeparated).
		Updates(map[string]any{
			"employment_status": StatusSeparated,
			"separated_at":      at,
		})
	return res.RowsAffected > 0, res.Error
}
