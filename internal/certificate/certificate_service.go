package certificate

import (
	"context"
	"errors"
	"strings"
	"time"

	certificateerrors "go-offboarding/internal/certificate/errors"
	"go-offboarding/internal/employee"
	"go-offboarding/internal/events"
	"go-offboarding/internal/messaging/kafka"
	"go-offboarding/internal/separation"
	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/contextutil"
	"go-offboarding/internal/shared/counter"
	"go-offboarding/internal/shared/dbtx"
	"go-offboarding/internal/shared/metrics"
	"go-offboarding/internal/shared/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	entityName   = "certificate"
	numberPrefix = "WC"
	dateLayout   = "2006-01-02"
)

type SeparationReader interface {
	Lookup(ctx context.Context, companyID, id string) (*separation.Separation, error)
}

type ClearanceChecker interface {
	IsFullyCleared(ctx context.Context, companyID, separationID string) (bool, error)
}

type EmployeeDirectory interface {
	GetSnapshot(ctx context.Context, companyID, employeeID string) (employee.Snapshot, error)
}

type Dependencies struct {
	Separations SeparationReader
	Clearance   ClearanceChecker
	Employees   EmployeeDirectory
	Counter     counter.Repository
	Outbox      kafka.OutboxRepository
	Now         func() time.Time
}

type Service interface {
	Create(ctx context.Context, companyID, actor string, req CreateCertificateRequest) (CertificateResponse, error)
	GetAll(ctx context.Context, companyID string, filter Filter) ([]CertificateResponse, error)
	GetByID(ctx context.Context, companyID, id string) (CertificateResponse, error)
	Update(ctx context.Context, companyID, actor, id string, req UpdateCertificateRequest) (CertificateResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	Issue(ctx context.Context, companyID, actor, id string) (CertificateResponse, error)
	Revoke(ctx context.Context, companyID, actor, id, reason string) (CertificateResponse, error)
	AvailableTypes(ctx context.Context, companyID, separationID string) (AvailableTypesResponse, error)
	HasProgressed(ctx context.Context, companyID, separationID string) (bool, error)
	DeleteForSeparation(ctx context.Context, companyID, separationID string) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	deps   Dependencies
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("certificate.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("certificate.service")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{db: db, repo: repo, deps: deps, logger: l}
}

var certifiableStatuses = map[separation.Status]bool{
	separation.StatusClearancePending:  true,
	separation.StatusSettlementPending: true,
	separation.StatusCompleted:         true,
}

// checkSeparation covers the part of eligibility that does not depend on the
// certificate type.
func (s *service) checkSeparation(ctx context.Context, companyID string, sep *separation.Separation) error {
	if !sep.EligibleForCertificate {
		return apperror.BlockedTransition(entityName, string(sep.Status), string(StatusDraft),
			"separation is not eligible for a certificate")
	}
	if !certifiableStatuses[sep.Status] {
		return apperror.BlockedTransition(entityName, string(sep.Status), string(StatusDraft),
			"separation must be in clearance_pending, settlement_pending or completed")
	}

	cleared, err := s.deps.Clearance.IsFullyCleared(ctx, companyID, sep.ID.String())
	if err != nil {
		return err
	}
	if !cleared {
		return apperror.BlockedTransition(entityName, string(sep.Status), string(StatusDraft),
			"all department clearances must be cleared")
	}
	return nil
}

func (s *service) activeTypes(ctx context.Context, companyID, separationID string) (map[Type]bool, error) {
	certs, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).ListActiveBySeparation(ctx, companyID, separationID)
	if err != nil {
		return nil, err
	}
	active := make(map[Type]bool, len(certs))
	for _, c := range certs {
		active[c.CertificateType] = true
	}
	return active, nil
}

func (s *service) AvailableTypes(ctx context.Context, companyID, separationID string) (AvailableTypesResponse, error) {
	sep, err := s.deps.Separations.Lookup(ctx, companyID, separationID)
	if err != nil {
		return AvailableTypesResponse{}, err
	}

	resp := AvailableTypesResponse{SeparationID: separationID, Types: []string{}}
	if err := s.checkSeparation(ctx, companyID, sep); err != nil {
		if apperror.HasCode(err, apperror.CodeInvalidState) {
			return resp, nil
		}
		return AvailableTypesResponse{}, err
	}

	active, err := s.activeTypes(ctx, companyID, separationID)
	if err != nil {
		return AvailableTypesResponse{}, err
	}
	for _, t := range AllTypes {
		if !active[t] {
			resp.Types = append(resp.Types, string(t))
		}
	}
	return resp, nil
}

func (s *service) Create(ctx context.Context, companyID, actor string, req CreateCertificateRequest) (CertificateResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create certificate requested",
		zap.String("separation_id", req.SeparationID),
		zap.String("certificate_type", req.CertificateType),
	)

	if strings.TrimSpace(actor) == "" {
		return CertificateResponse{}, apperror.ErrActorRequired
	}
	if err := validation.Struct(req); err != nil {
		return CertificateResponse{}, err
	}

	var cert *Certificate
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		sep, err := s.deps.Separations.Lookup(ctx, companyID, req.SeparationID)
		if err != nil {
			return err
		}
		if err := s.checkSeparation(ctx, companyID, sep); err != nil {
			return err
		}

		active, err := s.activeTypes(ctx, companyID, req.SeparationID)
		if err != nil {
			return err
		}
		if active[Type(req.CertificateType)] {
			return certificateerrors.ErrCertificateExists
		}

		snap, err := s.deps.Employees.GetSnapshot(ctx, companyID, sep.EmployeeID.String())
		if err != nil {
			return err
		}

		seq, err := s.deps.Counter.WithTx(tx).GetNextValue(ctx, companyID, counter.TypeCertificateNumber)
		if err != nil {
			return err
		}

		cert = &Certificate{
			ID:                  uuid.New(),
			CompanyID:           sep.CompanyID,
			CertificateNumber:   counter.Format(numberPrefix, s.deps.Now(), seq),
			SeparationID:        sep.ID,
			EmployeeID:          sep.EmployeeID,
			EmployeeName:        sep.EmployeeName,
			CertificateType:     Type(req.CertificateType),
			PositionTitle:       sep.Position,
			Department:          sep.Department,
			EmploymentStartDate: snap.HireDate,
			EmploymentEndDate:   sep.ProposedLastDay,
			DutiesSummary:       req.DutiesSummary,
			SignatoryName:       req.SignatoryName,
			SignatoryTitle:      req.SignatoryTitle,
			Status:              StatusDraft,
		}

		return s.repo.WithTx(tx).Create(ctx, cert)
	})
	if err != nil {
		log.Warn("create certificate failed", zap.String("separation_id", req.SeparationID), zap.Error(err))
		return CertificateResponse{}, mapRepositoryError(err)
	}

	log.Info("create certificate success",
		zap.String("certificate_id", cert.ID.String()),
		zap.String("certificate_number", cert.CertificateNumber),
	)
	return mapToResponse(*cert), nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter Filter) ([]CertificateResponse, error) {
	certs, err := s.repo.FindAll(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	res := make([]CertificateResponse, len(certs))
	for i, c := range certs {
		res[i] = mapToResponse(c)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (CertificateResponse, error) {
	cert, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return CertificateResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*cert), nil
}

func (s *service) Update(ctx context.Context, companyID, actor, id string, req UpdateCertificateRequest) (CertificateResponse, error) {
	if strings.TrimSpace(actor) == "" {
		return CertificateResponse{}, apperror.ErrActorRequired
	}
	if err := validation.Struct(req); err != nil {
		return CertificateResponse{}, err
	}

	var cert *Certificate
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		cert, err = qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if cert.Status != StatusDraft {
			metrics.RecordRejected(entityName, string(cert.Status), "update")
			return apperror.InvalidTransition(entityName, string(cert.Status), "update")
		}

		if req.PositionTitle != nil {
			cert.PositionTitle = *req.PositionTitle
		}
		if req.DutiesSummary != nil {
			cert.DutiesSummary = *req.DutiesSummary
		}
		if req.SignatoryName != nil {
			cert.SignatoryName = *req.SignatoryName
		}
		if req.SignatoryTitle != nil {
			cert.SignatoryTitle = *req.SignatoryTitle
		}
		return qtx.Update(ctx, cert)
	})
	if err != nil {
		return CertificateResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*cert), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		cert, err := qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if cert.Status != StatusDraft {
			metrics.RecordRejected(entityName, string(cert.Status), "delete")
			return apperror.InvalidTransition(entityName, string(cert.Status), "delete")
		}
		return qtx.Delete(ctx, companyID, id)
	})
	return mapRepositoryError(err)
}

func (s *service) Issue(ctx context.Context, companyID, actor, id string) (CertificateResponse, error) {
	return s.transition(ctx, companyID, actor, id, StatusIssued, "", func(c *Certificate, at time.Time) {
		c.IssueDate = &at
		c.IssuedBy = actor
	})
}

func (s *service) Revoke(ctx context.Context, companyID, actor, id, reason string) (CertificateResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return CertificateResponse{}, certificateerrors.ErrRevocationReasonRequired
	}

	return s.transition(ctx, companyID, actor, id, StatusRevoked, reason, func(c *Certificate, at time.Time) {
		c.RevokedAt = &at
		c.RevokedBy = actor
		c.RevocationReason = reason
	})
}

func (s *service) transition(
	ctx context.Context,
	companyID, actor, id string,
	to Status,
	reason string,
	apply func(c *Certificate, at time.Time),
) (CertificateResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if strings.TrimSpace(actor) == "" {
		return CertificateResponse{}, apperror.ErrActorRequired
	}

	var (
		cert *Certificate
		from Status
	)
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		cert, err = qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		from = cert.Status

		if !isAllowedStatusTransition(from, to) {
			metrics.RecordRejected(entityName, string(from), string(to))
			return apperror.InvalidTransition(entityName, string(from), string(to))
		}

		now := s.deps.Now().UTC()
		cert.Status = to
		apply(cert, now)

		if err := qtx.Update(ctx, cert); err != nil {
			return err
		}

		if s.deps.Outbox == nil {
			return nil
		}
		event, err := kafka.NewOutboxEvent(ctx,
			events.AggregateCertificate,
			cert.ID.String(),
			events.CertificateStatusChanged,
			events.CertificateTopic,
			events.StatusChangedEvent{
				EventType:     events.CertificateStatusChanged,
				SeparationID:  cert.SeparationID.String(),
				CertificateID: cert.ID.String(),
				EmployeeID:    cert.EmployeeID.String(),
				CompanyID:     cert.CompanyID.String(),
				FromStatus:    string(from),
				ToStatus:      string(to),
				Actor:         actor,
				Reason:        reason,
				OccurredAt:    now,
				RequestID:     contextutil.GetRequestID(ctx),
			},
		)
		if err != nil {
			return err
		}
		return s.deps.Outbox.WithTx(tx).Create(ctx, event)
	})
	if err != nil {
		log.Warn("certificate transition failed",
			zap.String("certificate_id", id),
			zap.String("attempted_status", string(to)),
			zap.Error(err),
		)
		return CertificateResponse{}, mapRepositoryError(err)
	}

	metrics.RecordTransition(entityName, string(from), string(to))
	log.Info("certificate status changed",
		zap.String("certificate_id", id),
		zap.String("certificate_number", cert.CertificateNumber),
		zap.String("to_status", string(to)),
		zap.String("actor", actor),
	)
	return mapToResponse(*cert), nil
}

func (s *service) HasProgressed(ctx context.Context, companyID, separationID string) (bool, error) {
	return s.repo.WithTx(dbtx.Conn(ctx, s.db)).ExistsBeyondDraft(ctx, companyID, separationID)
}

func (s *service) DeleteForSeparation(ctx context.Context, companyID, separationID string) error {
	return dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteBySeparation(ctx, companyID, separationID)
	})
}

func isAllowedStatusTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusIssued
	case StatusIssued:
		return to == StatusRevoked
	default:
		return false
	}
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return certificateerrors.ErrCertificateNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_certificate_number":
			return certificateerrors.ErrCertificateNumberExists
		case "uq_certificate_active_type":
			return certificateerrors.ErrCertificateExists
		}
	}
	return err
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func mapToResponse(c Certificate) CertificateResponse {
	return CertificateResponse{
		ID:                  c.ID.String(),
		CertificateNumber:   c.CertificateNumber,
		SeparationID:        c.SeparationID.String(),
		EmployeeID:          c.EmployeeID.String(),
		EmployeeName:        c.EmployeeName,
		CertificateType:     string(c.CertificateType),
		PositionTitle:       c.PositionTitle,
		Department:          c.Department,
		EmploymentStartDate: c.EmploymentStartDate.Format(dateLayout),
		EmploymentEndDate:   c.EmploymentEndDate.Format(dateLayout),
		DutiesSummary:       c.DutiesSummary,
		SignatoryName:       c.SignatoryName,
		SignatoryTitle:      c.SignatoryTitle,
		Status:              string(c.Status),
		IssueDate:           formatTime(c.IssueDate),
		IssuedBy:            c.IssuedBy,
		RevokedAt:           formatTime(c.RevokedAt),
		RevokedBy:           c.RevokedBy,
		RevocationReason:    c.RevocationReason,
		CreatedAt:           c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           c.UpdatedAt.Format(time.RFC3339),
	}
}
