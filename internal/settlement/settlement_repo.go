package settlement

import (
	"context"

	"go-offboarding/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=settlement_repo.go -destination=mock/settlement_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, s *Settlement) error
	FindAll(ctx context.Context, companyID string, filter Filter) ([]Settlement, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Settlement, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Settlement, error)
	FindBySeparation(ctx context.Context, companyID, separationID string) (*Settlement, error)
	Update(ctx context.Context, s *Settlement) error
	Delete(ctx context.Context, companyID, id string) error
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

func (r *repository) Create(ctx context.Context, s *Settlement) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter Filter) ([]Settlement, error) {
	var settlements []Settlement

	q := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SeparationID != "" {
		q = q.Where("separation_id = ?", filter.SeparationID)
	}

	err := q.Order("created_at DESC").Find(&settlements).Error
	return settlements, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Settlement, error) {
	var s Settlement
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Settlement, error) {
	var s Settlement
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindBySeparation(ctx context.Context, companyID, separationID string) (*Settlement, error) {
	var s Settlement
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&s, "separation_id = ?", separationID).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *Settlement) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Settlement{}, "id = ?", id).Error
}

func (r *repository) DeleteBySeparation(ctx context.Context, companyID, separationID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("separation_id = ?", separationID).
		Delete(&Settlement{}).Error
}
