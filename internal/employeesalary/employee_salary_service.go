package employeesalary

import (
	"context"
	"errors"
	"time"

	employeesalaryerrors "go-offboarding/internal/employeesalary/errors"
	"go-offboarding/internal/shared/dbtx"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_salary_service.go -destination=mock/employee_salary_service_mock.go -package=mock
type Service interface {
	CurrentBaseSalary(ctx context.Context, companyID, employeeID string, asOf time.Time) (decimal.Decimal, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employeesalary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employeesalary.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) CurrentBaseSalary(ctx context.Context, companyID, employeeID string, asOf time.Time) (decimal.Decimal, error) {
	salary, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).FindEffective(ctx, companyID, employeeID, asOf)
	if err != nil {
		s.logger.Debug("effective salary lookup failed",
			zap.String("company_id", companyID),
			zap.String("employee_id", employeeID),
			zap.Time("as_of", asOf),
			zap.Error(err),
		)
		return decimal.Zero, mapRepositoryError(err)
	}

	if salary.BaseSalary.IsNegative() {
		s.logger.Warn("negative base salary on record, treating as zero",
			zap.String("employee_id", employeeID),
			zap.String("salary_id", salary.ID.String()),
		)
		return decimal.Zero, nil
	}
	return salary.BaseSalary, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeesalaryerrors.ErrSalaryNotFound
	}
	return err
}
