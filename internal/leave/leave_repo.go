package leave

import (
	"context"
	"time"

	"go-offboarding/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	SumApprovedDays(ctx context.Context, companyID, employeeID, leaveType string, from, to time.Time) (int64, error)
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

// SumApprovedDays totals approved leave of one type starting inside [from, to].
func (r *repository) SumApprovedDays(ctx context.Context, companyID, employeeID, leaveType string, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Scopes(tenant.Scope(companyID)).
		Select("COALESCE(SUM(total_days), 0)").
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		Where("status = ?", StatusApproved).
		Where("start_date >= ? AND start_date <= ?", from, to).
		Scan(&total).Error
	return total, err
}
