package leave

import (
	"context"
	"time"

	"go-offboarding/internal/shared/dbtx"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultAnnualEntitlementDays = 12

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	AnnualBalance(ctx context.Context, companyID, employeeID string, hireDate, asOf time.Time) (decimal.Decimal, error)
}

type service struct {
	db          *gorm.DB
	repo        Repository
	entitlement decimal.Decimal
	logger      *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, annualEntitlementDays float64, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if annualEntitlementDays <= 0 {
		annualEntitlementDays = DefaultAnnualEntitlementDays
	}
	return &service{
		db:          db,
		repo:        repo,
		entitlement: decimal.NewFromFloat(annualEntitlementDays),
		logger:      l,
	}
}

// AnnualBalance is the unused annual leave in the calendar year of asOf:
// monthly accrual since the later of Jan 1 and the hire date, minus approved
// annual leave taken that year. It never goes below zero.
func (s *service) AnnualBalance(ctx context.Context, companyID, employeeID string, hireDate, asOf time.Time) (decimal.Decimal, error) {
	months := MonthsServedInYear(hireDate, asOf)
	if months == 0 {
		return decimal.Zero, nil
	}

	accrued := s.entitlement.Mul(decimal.NewFromInt(int64(months))).Div(decimal.NewFromInt(12))

	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())
	used, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).SumApprovedDays(ctx, companyID, employeeID, TypeAnnual, yearStart, asOf)
	if err != nil {
		s.logger.Error("sum approved leave failed",
			zap.String("company_id", companyID),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return decimal.Zero, err
	}

	balance := accrued.Sub(decimal.NewFromInt(used))
	if balance.IsNegative() {
		return decimal.Zero, nil
	}
	return balance, nil
}

// MonthsServedInYear counts the calendar months of asOf's year, up to and
// including asOf's month, that the employee started or was already employed in.
func MonthsServedInYear(hireDate, asOf time.Time) int {
	if !hireDate.IsZero() && hireDate.After(asOf) {
		return 0
	}

	firstMonth := time.January
	if !hireDate.IsZero() && hireDate.Year() == asOf.Year() {
		firstMonth = hireDate.Month()
	}

	return int(asOf.Month()-firstMonth) + 1
}
