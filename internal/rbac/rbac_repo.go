package rbac

import "gorm.io/gorm"

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error)
	GetRolePermissions(companyID string) ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// EmployeeRoleRow becomes a casbin grouping policy (employee, role, company).
type EmployeeRoleRow struct {
	EmployeeID string
	RoleID     string
}

// RolePermissionRow becomes a casbin policy (role, company, resource, action).
type RolePermissionRow struct {
	RoleID   string
	Resource string
	Action   string
}

func (r *repository) GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error) {
	var rows []EmployeeRoleRow

	err := r.db.Model(&EmployeeRole{}).
		Select("employee_roles.employee_id, employee_roles.role_id").
		Joins("JOIN roles ON roles.id = employee_roles.role_id").
		Where("roles.company_id = ?", companyID).
		Order("employee_roles.employee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) GetRolePermissions(companyID string) ([]RolePermissionRow, error) {
	var rows []RolePermissionRow

	err := r.db.Model(&RolePermission{}).
		Select("role_permissions.role_id, permissions.resource, permissions.action").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("roles.company_id = ?", companyID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
