package department

import (
	"context"

	"go-offboarding/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=department_repo.go -destination=mock/department_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dept *Department) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Department, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Department, error)
	FindClearanceDepartments(ctx context.Context, companyID string) ([]Department, error)
	Update(ctx context.Context, dept *Department) error
	Delete(ctx context.Context, companyID string, id string) error
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

func (r *repository) Create(ctx context.Context, dept *Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Department, error) {
	var depts []Department
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&depts).Error
	return depts, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Department, error) {
	var dept Department
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *repository) FindClearanceDepartments(ctx context.Context, companyID string) ([]Department, error) {
	var depts []Department
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("requires_clearance = ? AND is_active = ?", true, true).
		Order("clearance_order ASC, name ASC").
		Find(&depts).Error
	return depts, err
}

func (r *repository) Update(ctx context.Context, dept *Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Delete(&Department{}).Error
}
