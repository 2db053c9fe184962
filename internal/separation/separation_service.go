package separation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-offboarding/internal/employee"
	"go-offboarding/internal/events"
	"go-offboarding/internal/messaging/kafka"
	separationerrors "go-offboarding/internal/separation/errors"
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
	entityName   = "separation"
	numberPrefix = "SEP"
	dateLayout   = "2006-01-02"
)

// EmployeeDirectory resolves the employee snapshot copied onto a new separation.
type EmployeeDirectory interface {
	GetSnapshot(ctx context.Context, companyID, employeeID string) (employee.Snapshot, error)
}

// ClearanceTracker is the part of the clearance module the separation drives.
type ClearanceTracker interface {
	InitializeForSeparation(ctx context.Context, companyID, separationID string) error
	IsFullyCleared(ctx context.Context, companyID, separationID string) (bool, error)
}

// ChildRecords is implemented by every module that owns rows referencing a
// separation (clearances, settlement, certificates).
type ChildRecords interface {
	HasProgressed(ctx context.Context, companyID, separationID string) (bool, error)
	DeleteForSeparation(ctx context.Context, companyID, separationID string) error
}

type Dependencies struct {
	Employees EmployeeDirectory
	Clearance ClearanceTracker
	Counter   counter.Repository
	Outbox    kafka.OutboxRepository
	Children  []ChildRecords
	Now       func() time.Time
}

//go:generate mockgen -source=separation_service.go -destination=mock/separation_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actor string, req CreateSeparationRequest) (SeparationResponse, error)
	GetAll(ctx context.Context, companyID string, filter Filter) ([]SeparationResponse, error)
	GetByID(ctx context.Context, companyID, id string) (SeparationResponse, error)
	Update(ctx context.Context, companyID, actor, id string, req UpdateSeparationRequest) (SeparationResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	Approve(ctx context.Context, companyID, actor, id, reason string) (SeparationResponse, error)
	Reject(ctx context.Context, companyID, actor, id, reason string) (SeparationResponse, error)
	StartClearance(ctx context.Context, companyID, actor, id string) (SeparationResponse, error)
	RecordExitInterview(ctx context.Context, companyID, actor, id string, req ExitInterviewRequest) (SeparationResponse, error)
	Advance(ctx context.Context, companyID, actor, id, reason string) (SeparationResponse, error)
	Lookup(ctx context.Context, companyID, id string) (*Separation, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	deps   Dependencies
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("separation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("separation.service")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{db: db, repo: repo, deps: deps, logger: l}
}

func (s *service) Create(ctx context.Context, companyID, actor string, req CreateSeparationRequest) (SeparationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create separation requested",
		zap.String("company_id", companyID),
		zap.String("actor", actor),
		zap.String("employee_id", req.EmployeeID),
		zap.String("separation_type", req.SeparationType),
	)

	if strings.TrimSpace(actor) == "" {
		return SeparationResponse{}, apperror.ErrActorRequired
	}
	if err := validation.Struct(req); err != nil {
		log.Warn("create separation validation failed", zap.Error(err))
		return SeparationResponse{}, err
	}
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return SeparationResponse{}, separationerrors.ErrInvalidCompanyID
	}

	requestDate, err := parseDate(req.RequestDate)
	if err != nil {
		return SeparationResponse{}, err
	}
	lastDay, err := parseDate(req.ProposedLastDay)
	if err != nil {
		return SeparationResponse{}, err
	}
	if lastDay.Before(requestDate) {
		return SeparationResponse{}, separationerrors.ErrInvalidDateRange
	}

	initiatedBy := InitiatedByEmployee
	if req.InitiatedBy != "" {
		initiatedBy = Initiator(req.InitiatedBy)
	}
	noticeDays := int(lastDay.Sub(requestDate).Hours() / 24)
	if req.NoticePeriodDays != nil {
		noticeDays = *req.NoticePeriodDays
	}

	var sep *Separation
	err = dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		snap, err := s.deps.Employees.GetSnapshot(ctx, companyID, req.EmployeeID)
		if err != nil {
			return err
		}

		seq, err := s.deps.Counter.WithTx(tx).GetNextValue(ctx, companyID, counter.TypeSeparationNumber)
		if err != nil {
			return err
		}

		employeeUUID, err := uuid.Parse(snap.EmployeeID)
		if err != nil {
			return err
		}

		sep = &Separation{
			ID:                     uuid.New(),
			CompanyID:              companyUUID,
			SeparationNumber:       counter.Format(numberPrefix, s.deps.Now(), seq),
			EmployeeID:             employeeUUID,
			EmployeeName:           snap.FullName,
			Department:             snap.DepartmentName,
			Position:               snap.PositionTitle,
			SeparationType:         Type(req.SeparationType),
			InitiatedBy:            initiatedBy,
			RequestDate:            requestDate,
			ProposedLastDay:        lastDay,
			NoticePeriodDays:       noticeDays,
			ReasonCategory:         req.ReasonCategory,
			ReasonDetails:          req.ReasonDetails,
			EligibleForCertificate: boolOrDefault(req.EligibleForCertificate, true),
			EligibleForRehire:      boolOrDefault(req.EligibleForRehire, true),
			Status:                 StatusPendingApproval,
			CreatedBy:              actor,
		}

		return s.repo.WithTx(tx).Create(ctx, sep)
	})
	if err != nil {
		log.Error("create separation failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return SeparationResponse{}, mapRepositoryError(err)
	}

	log.Info("create separation success",
		zap.String("separation_id", sep.ID.String()),
		zap.String("separation_number", sep.SeparationNumber),
		zap.String("company_id", companyID),
	)
	return mapToResponse(*sep, nil), nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter Filter) ([]SeparationResponse, error) {
	seps, err := s.repo.FindAll(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(seps), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (SeparationResponse, error) {
	sep, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SeparationResponse{}, mapRepositoryError(err)
	}

	history, err := s.repo.ListStatusChanges(ctx, id)
	if err != nil {
		return SeparationResponse{}, err
	}

	return mapToResponse(*sep, history), nil
}

func (s *service) Lookup(ctx context.Context, companyID, id string) (*Separation, error) {
	sep, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return sep, nil
}

func (s *service) Update(ctx context.Context, companyID, actor, id string, req UpdateSeparationRequest) (SeparationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if strings.TrimSpace(actor) == "" {
		return SeparationResponse{}, apperror.ErrActorRequired
	}
	if err := validation.Struct(req); err != nil {
		return SeparationResponse{}, err
	}

	var sep *Separation
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		sep, err = qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}

		if req.touchesRequestFields() && sep.Status != StatusPendingApproval {
			metrics.RecordRejected(entityName, string(sep.Status), "update")
			return apperror.BlockedTransition(entityName, string(sep.Status), "update",
				"separation request details can only be edited while pending approval")
		}

		if err := applyUpdate(sep, req); err != nil {
			return err
		}

		return qtx.Update(ctx, sep)
	})
	if err != nil {
		log.Warn("update separation failed", zap.String("separation_id", id), zap.Error(err))
		return SeparationResponse{}, mapRepositoryError(err)
	}

	log.Info("update separation success", zap.String("separation_id", id), zap.String("actor", actor))
	return mapToResponse(*sep, nil), nil
}

func applyUpdate(sep *Separation, req UpdateSeparationRequest) error {
	requestDate, lastDay := sep.RequestDate, sep.ProposedLastDay
	if req.RequestDate != nil {
		d, err := parseDate(*req.RequestDate)
		if err != nil {
			return err
		}
		requestDate = d
	}
	if req.ProposedLastDay != nil {
		d, err := parseDate(*req.ProposedLastDay)
		if err != nil {
			return err
		}
		lastDay = d
	}
	if lastDay.Before(requestDate) {
		return separationerrors.ErrInvalidDateRange
	}
	sep.RequestDate, sep.ProposedLastDay = requestDate, lastDay

	if req.SeparationType != nil {
		sep.SeparationType = Type(*req.SeparationType)
	}
	if req.InitiatedBy != nil {
		sep.InitiatedBy = Initiator(*req.InitiatedBy)
	}
	if req.NoticePeriodDays != nil {
		sep.NoticePeriodDays = *req.NoticePeriodDays
	}
	if req.ReasonCategory != nil {
		sep.ReasonCategory = *req.ReasonCategory
	}
	if req.ReasonDetails != nil {
		sep.ReasonDetails = *req.ReasonDetails
	}
	if req.EligibleForCertificate != nil {
		sep.EligibleForCertificate = *req.EligibleForCertificate
	}
	if req.EligibleForRehire != nil {
		sep.EligibleForRehire = *req.EligibleForRehire
	}
	return nil
}

// Delete soft-deletes the separation and its children. It is refused once any
// child record has moved past its initial status.
func (s *service) Delete(ctx context.Context, companyID, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		sep, err := qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}

		for _, child := range s.deps.Children {
			progressed, err := child.HasProgressed(ctx, companyID, id)
			if err != nil {
				return err
			}
			if progressed {
				metrics.RecordRejected(entityName, string(sep.Status), "delete")
				return apperror.BlockedTransition(entityName, string(sep.Status), "delete",
					"separation cannot be deleted after clearance, settlement or certificate work has started")
			}
		}

		for _, child := range s.deps.Children {
			if err := child.DeleteForSeparation(ctx, companyID, id); err != nil {
				return err
			}
		}

		return qtx.Delete(ctx, companyID, id)
	})
	if err != nil {
		log.Warn("delete separation failed", zap.String("separation_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	log.Info("delete separation success", zap.String("separation_id", id))
	return nil
}

func (s *service) Approve(ctx context.Context, companyID, actor, id, reason string) (SeparationResponse, error) {
	return s.transition(ctx, companyID, actor, id, StatusApproved, reason, nil, nil)
}

func (s *service) Reject(ctx context.Context, companyID, actor, id, reason string) (SeparationResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return SeparationResponse{}, separationerrors.ErrRejectionReasonRequired
	}
	return s.transition(ctx, companyID, actor, id, StatusRejected, reason, nil, nil)
}

// StartClearance moves an approved separation to clearance_pending and seeds
// one clearance per clearance department in the same transaction.
func (s *service) StartClearance(ctx context.Context, companyID, actor, id string) (SeparationResponse, error) {
	return s.transition(ctx, companyID, actor, id, StatusClearancePending, "", nil,
		func(ctx context.Context, sep *Separation) error {
			return s.deps.Clearance.InitializeForSeparation(ctx, companyID, sep.ID.String())
		},
	)
}

func (s *service) RecordExitInterview(ctx context.Context, companyID, actor, id string, req ExitInterviewRequest) (SeparationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if strings.TrimSpace(actor) == "" {
		return SeparationResponse{}, apperror.ErrActorRequired
	}
	if err := validation.Struct(req); err != nil {
		return SeparationResponse{}, err
	}
	interviewDate, err := parseDate(req.InterviewDate)
	if err != nil {
		return SeparationResponse{}, err
	}

	var sep *Separation
	err = dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		sep, err = qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if sep.Status != StatusExitInterview {
			metrics.RecordRejected(entityName, string(sep.Status), "record_exit_interview")
			return apperror.BlockedTransition(entityName, string(sep.Status), "record_exit_interview",
				"exit interview can only be recorded while the separation is in exit_interview")
		}

		sep.ExitInterviewDate = &interviewDate
		sep.ExitInterviewer = req.Interviewer
		sep.ExitInterviewNotes = req.Notes
		if req.EligibleForRehire != nil {
			sep.EligibleForRehire = *req.EligibleForRehire
		}

		return qtx.Update(ctx, sep)
	})
	if err != nil {
		log.Warn("record exit interview failed", zap.String("separation_id", id), zap.Error(err))
		return SeparationResponse{}, mapRepositoryError(err)
	}

	log.Info("exit interview recorded", zap.String("separation_id", id), zap.String("actor", actor))
	return mapToResponse(*sep, nil), nil
}

// Advance performs the explicit forward step after clearance started.
// clearance_pending needs every clearance cleared, exit_interview needs a
// recorded interview.
func (s *service) Advance(ctx context.Context, companyID, actor, id, reason string) (SeparationResponse, error) {
	var target Status

	resp, err := s.transition(ctx, companyID, actor, id, "", reason,
		func(ctx context.Context, sep *Separation) (Status, error) {
			next, ok := advanceTarget(sep.Status)
			if !ok {
				return "", apperror.InvalidTransition(entityName, string(sep.Status), "advance")
			}
			target = next

			switch sep.Status {
			case StatusClearancePending:
				cleared, err := s.deps.Clearance.IsFullyCleared(ctx, companyID, sep.ID.String())
				if err != nil {
					return "", err
				}
				if !cleared {
					return "", apperror.BlockedTransition(entityName, string(sep.Status), string(next),
						"all department clearances must be cleared before the exit interview")
				}
			case StatusExitInterview:
				if !sep.HasExitInterview() {
					return "", apperror.BlockedTransition(entityName, string(sep.Status), string(next),
						"exit interview must be recorded before settlement")
				}
			}
			return next, nil
		},
		nil,
	)
	if err != nil {
		return SeparationResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Debug("separation advanced", zap.String("separation_id", id), zap.String("to_status", string(target)))
	return resp, nil
}

type guardFunc func(ctx context.Context, sep *Separation) (Status, error)
type afterFunc func(ctx context.Context, sep *Separation) error

// transition runs one status change: lock, validate, write status + audit row +
// outbox event, then the optional follow-up, all in one transaction. When guard
// is set it decides the target status instead of attempted.
func (s *service) transition(
	ctx context.Context,
	companyID, actor, id string,
	attempted Status,
	reason string,
	guard guardFunc,
	after afterFunc,
) (SeparationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("separation transition requested",
		zap.String("separation_id", id),
		zap.String("company_id", companyID),
		zap.String("actor", actor),
		zap.String("attempted_status", string(attempted)),
	)

	if strings.TrimSpace(actor) == "" {
		return SeparationResponse{}, apperror.ErrActorRequired
	}

	var (
		sep  *Separation
		from Status
	)
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		sep, err = qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		from = sep.Status

		to := attempted
		if guard != nil {
			if to, err = guard(ctx, sep); err != nil {
				if apperror.HasCode(err, apperror.CodeInvalidState) {
					metrics.RecordRejected(entityName, string(from), "advance")
				}
				return err
			}
		}
		if !isAllowedStatusTransition(from, to) {
			metrics.RecordRejected(entityName, string(from), string(to))
			return apperror.InvalidTransition(entityName, string(from), string(to))
		}

		now := s.deps.Now().UTC()
		sep.Status = to
		if err := qtx.Update(ctx, sep); err != nil {
			return err
		}

		if err := qtx.AppendStatusChange(ctx, &StatusChange{
			ID:           uuid.New(),
			SeparationID: sep.ID,
			FromStatus:   from,
			ToStatus:     to,
			Reason:       reason,
			Actor:        actor,
			ChangedAt:    now,
		}); err != nil {
			return err
		}

		if err := s.enqueueStatusChanged(ctx, tx, sep, from, actor, reason, now); err != nil {
			return err
		}

		if after != nil {
			return after(ctx, sep)
		}
		return nil
	})
	if err != nil {
		if apperror.HasCode(err, apperror.CodeInvalidState) {
			log.Warn("separation transition rejected",
				zap.String("separation_id", id),
				zap.String("current_status", string(from)),
				zap.Error(err),
			)
		} else {
			log.Error("separation transition failed", zap.String("separation_id", id), zap.Error(err))
		}
		return SeparationResponse{}, mapRepositoryError(err)
	}

	metrics.RecordTransition(entityName, string(from), string(sep.Status))
	log.Info("separation status changed",
		zap.String("separation_id", id),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(sep.Status)),
		zap.String("actor", actor),
	)

	return mapToResponse(*sep, nil), nil
}

func (s *service) enqueueStatusChanged(ctx context.Context, tx *gorm.DB, sep *Separation, from Status, actor, reason string, at time.Time) error {
	if s.deps.Outbox == nil {
		return nil
	}

	event, err := kafka.NewOutboxEvent(ctx,
		events.AggregateSeparation,
		sep.ID.String(),
		events.SeparationStatusChanged,
		events.SeparationTopic,
		events.StatusChangedEvent{
			EventType:    events.SeparationStatusChanged,
			SeparationID: sep.ID.String(),
			EmployeeID:   sep.EmployeeID.String(),
			CompanyID:    sep.CompanyID.String(),
			FromStatus:   string(from),
			ToStatus:     string(sep.Status),
			Actor:        actor,
			Reason:       reason,
			OccurredAt:   at,
			RequestID:    contextutil.GetRequestID(ctx),
		},
	)
	if err != nil {
		return err
	}

	return s.deps.Outbox.WithTx(tx).Create(ctx, event)
}

func isAllowedStatusTransition(from, to Status) bool {
	switch from {
	case StatusPendingApproval:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusClearancePending
	case StatusClearancePending:
		return to == StatusExitInterview
	case StatusExitInterview:
		return to == StatusSettlementPending
	case StatusSettlementPending:
		return to == StatusCompleted
	default:
		return false
	}
}

func advanceTarget(from Status) (Status, bool) {
	switch from {
	case StatusClearancePending:
		return StatusExitInterview, true
	case StatusExitInterview:
		return StatusSettlementPending, true
	case StatusSettlementPending:
		return StatusCompleted, true
	default:
		return "", false
	}
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return separationerrors.ErrSeparationNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_separation_number" {
		return separationerrors.ErrSeparationNumberExists
	}
	return err
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, separationerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func mapToResponse(sep Separation, history []StatusChange) SeparationResponse {
	resp := SeparationResponse{
		ID:                     sep.ID.String(),
		CompanyID:              sep.CompanyID.String(),
		SeparationNumber:       sep.SeparationNumber,
		EmployeeID:             sep.EmployeeID.String(),
		EmployeeName:           sep.EmployeeName,
		Department:             sep.Department,
		Position:               sep.Position,
		SeparationType:         string(sep.SeparationType),
		InitiatedBy:            string(sep.InitiatedBy),
		RequestDate:            sep.RequestDate.Format(dateLayout),
		ProposedLastDay:        sep.ProposedLastDay.Format(dateLayout),
		NoticePeriodDays:       sep.NoticePeriodDays,
		ReasonCategory:         sep.ReasonCategory,
		ReasonDetails:          sep.ReasonDetails,
		EligibleForCertificate: sep.EligibleForCertificate,
		EligibleForRehire:      sep.EligibleForRehire,
		Status:                 string(sep.Status),
		ExitInterviewer:        sep.ExitInterviewer,
		ExitInterviewNotes:     sep.ExitInterviewNotes,
		CreatedBy:              sep.CreatedBy,
		CreatedAt:              sep.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              sep.UpdatedAt.Format(time.RFC3339),
	}
	if sep.ExitInterviewDate != nil {
		d := sep.ExitInterviewDate.Format(dateLayout)
		resp.ExitInterviewDate = &d
	}
	for _, h := range history {
		resp.StatusHistory = append(resp.StatusHistory, StatusChangeResponse{
			FromStatus: string(h.FromStatus),
			ToStatus:   string(h.ToStatus),
			Reason:     h.Reason,
			Actor:      h.Actor,
			ChangedAt:  h.ChangedAt.Format(time.RFC3339),
		})
	}
	return resp
}

func mapToListResponse(seps []Separation) []SeparationResponse {
	res := make([]SeparationResponse, len(seps))
	for i, sep := range seps {
		res[i] = mapToResponse(sep, nil)
	}
	return res
}
