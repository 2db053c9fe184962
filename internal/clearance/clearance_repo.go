package clearance

import (
	"context"

	"go-offboarding/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=clearance_repo.go -destination=mock/clearance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, clearances []Clearance) error
	CountBySeparation(ctx context.Context, companyID, separationID string) (int64, error)
	FindAll(ctx context.Context, companyID string, filter Filter) ([]Clearance, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Clearance, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Clearance, error)
	ListBySeparation(ctx context.Context, companyID, separationID string) ([]Clearance, error)
	ExistsBeyondPending(ctx context.Context, companyID, separationID string) (bool, error)
	Update(ctx context.Context, c *Clearance) error
	DeleteBySeparation(ctx context.Context, companyID, separationID string) error
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

func (r *repository) CreateBatch(ctx context.Context, clearances []Clearance) error {
	if len(clearances) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&clearances).Error
}

func (r *repository) CountBySeparation(ctx context.Context, companyID, separationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Clearance{}).
		Scopes(tenant.Scope(companyID)).
		Where("separation_id = ?", separationID).
		Count(&count).Error
	return count, err
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter Filter) ([]Clearance, error) {
	var clearances []Clearance

	q := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DepartmentID != "" {
		q = q.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.SeparationID != "" {
		q = q.Where("separation_id = ?", filter.SeparationID)
	}

	err := q.Order("created_at DESC, sort_order ASC").Find(&clearances).Error
	return clearances, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Clearance, error) {
	var c Clearance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Clearance, error) {
	var c Clearance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListBySeparation(ctx context.Context, companyID, separationID string) ([]Clearance, error) {
	var clearances []Clearance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("separation_id = ?", separationID).
		Order("sort_order ASC, department_name ASC").
		Find(&clearances).Error
	return clearances, err
}

func (r *repository) ExistsBeyondPending(ctx context.Context, companyID, separationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Clearance{}).
		Scopes(tenant.Scope(companyID)).
		Where("separation_id = ? AND status <> ?", separationID, StatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, c *Clearance) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *repository) DeleteBySeparation(ctx context.Context, companyID, separationID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("separation_id = ?", separationID).
		Delete(&Clearance{}).Error
}
