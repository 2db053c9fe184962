package certificate

import (
	"context"

	"go-offboarding/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cert *Certificate) error
	FindAll(ctx context.Context, companyID string, filter Filter) ([]Certificate, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Certificate, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Certificate, error)
	ListActiveBySeparation(ctx context.Context, companyID, separationID string) ([]Certificate, error)
	ExistsBeyondDraft(ctx context.Context, companyID, separationID string) (bool, error)
	Update(ctx context.Context, cert *Certificate) error
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

func (r *repository) Create(ctx context.Context, cert *Certificate) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter Filter) ([]Certificate, error) {
	var certs []Certificate

	q := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CertificateType != "" {
		q = q.Where("certificate_type = ?", filter.CertificateType)
	}
	if filter.SeparationID != "" {
		q = q.Where("separation_id = ?", filter.SeparationID)
	}

	err := q.Order("created_at DESC").Find(&certs).Error
	return certs, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Certificate, error) {
	var cert Certificate
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&cert, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Certificate, error) {
	var cert Certificate
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&cert, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *repository) ListActiveBySeparation(ctx context.Context, companyID, separationID string) ([]Certificate, error) {
	var certs []Certificate
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("separation_id = ? AND status <> ?", separationID, StatusRevoked).
		Find(&certs).Error
	return certs, err
}

func (r *repository) ExistsBeyondDraft(ctx context.Context, companyID, separationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Certificate{}).
		Scopes(tenant.Scope(companyID)).
		Where("separation_id = ? AND status <> ?", separationID, StatusDraft).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, cert *Certificate) error {
	return r.db.WithContext(ctx).Save(cert).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Certificate{}, "id = ?", id).Error
}

func (r *repository) DeleteBySeparation(ctx context.Context, companyID, separationID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("separation_id = ?", separationID).
		Delete(&Certificate{}).Error
}
