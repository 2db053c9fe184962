package separation

import (
	"context"
	"strings"

	"go-offboarding/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=separation_repo.go -destination=mock/separation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sep *Separation) error
	FindAll(ctx context.Context, companyID string, filter Filter) ([]Separation, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Separation, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Separation, error)
	Update(ctx context.Context, sep *Separation) error
	Delete(ctx context.Context, companyID, id string) error
	AppendStatusChange(ctx context.Context, change *StatusChange) error
	ListStatusChanges(ctx context.Context, separationID string) ([]StatusChange, error)
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

func (r *repository) Create(ctx context.Context, sep *Separation) error {
	return r.db.WithContext(ctx).Create(sep).Error
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter Filter) ([]Separation, error) {
	var seps []Separation

	q := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SeparationType != "" {
		q = q.Where("separation_type = ?", filter.SeparationType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		q = q.Where("employee_name ILIKE ? OR separation_number ILIKE ?", like, like)
	}

	err := q.Order("created_at DESC").Find(&seps).Error
	return seps, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Separation, error) {
	var sep Separation
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&sep, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sep, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Separation, error) {
	var sep Separation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&sep, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sep, nil
}

func (r *repository) Update(ctx context.Context, sep *Separation) error {
	return r.db.WithContext(ctx).Save(sep).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Separation{}, "id = ?", id).Error
}

func (r *repository) AppendStatusChange(ctx context.Context, change *StatusChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *repository) ListStatusChanges(ctx context.Context, separationID string) ([]StatusChange, error) {
	var changes []StatusChange
	err := r.db.WithContext(ctx).
		Where("separation_id = ?", separationID).
		Order("changed_at ASC").
		Find(&changes).Error
	return changes, err
}
