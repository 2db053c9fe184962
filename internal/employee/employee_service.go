package employee

import (
	"context"
	"errors"
	"time"

	employeeerrors "go-offboarding/internal/employee/errors"
	"go-offboarding/internal/shared/dbtx"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetSnapshot(ctx context.Context, companyID, id string) (Snapshot, error)
	MarkSeparated(ctx context.Context, companyID, id string, at time.Time) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) GetSnapshot(ctx context.Context, companyID, id string) (Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Snapshot{}, employeeerrors.ErrInvalidEmployeeID
	}

	snap, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).FindSnapshot(ctx, companyID, id)
	if err != nil {
		s.logger.Debug("employee snapshot lookup failed",
			zap.String("company_id", companyID),
			zap.String("employee_id", id),
			zap.Error(err),
		)
		return Snapshot{}, mapRepositoryError(err)
	}

	return *snap, nil
}

// MarkSeparated is idempotent: redelivered events leave the first separated_at.
func (s *service) MarkSeparated(ctx context.Context, companyID, id string, at time.Time) error {
	return dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		if _, err := qtx.FindByIDAndCompany(ctx, companyID, id); err != nil {
			return mapRepositoryError(err)
		}

		changed, err := qtx.MarkSeparated(ctx, companyID, id, at)
		if err != nil {
			s.logger.Error("mark employee separated failed", zap.String("employee_id", id), zap.Error(err))
			return err
		}

		s.logger.Info("employee status updated",
			zap.String("company_id", companyID),
			zap.String("employee_id", id),
			zap.String("status", StatusSeparated),
			zap.Bool("changed", changed),
		)
		return nil
	})
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}
	return err
}
