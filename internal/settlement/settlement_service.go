package settlement

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-offboarding/internal/employee"
	"go-offboarding/internal/events"
	"go-offboarding/internal/messaging/kafka"
	"go-offboarding/internal/separation"
	settlementerrors "go-offboarding/internal/settlement/errors"
	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/contextutil"
	"go-offboarding/internal/shared/dbtx"
	"go-offboarding/internal/shared/metrics"
	"go-offboarding/internal/shared/money"
	"go-offboarding/internal/shared/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	entityName              = "settlement"
	defaultCurrency         = "IDR"
	defaultDailyRateDivisor = 30
)

type SeparationReader interface {
	Lookup(ctx context.Context, companyID, id string) (*separation.Separation, error)
}

type ClearanceChecker interface {
	IsFullyCleared(ctx context.Context, companyID, separationID string) (bool, error)
}

type SalaryReader interface {
	CurrentBaseSalary(ctx context.Context, companyID, employeeID string, asOf time.Time) (decimal.Decimal, error)
}

type LeaveReader interface {
	AnnualBalance(ctx context.Context, companyID, employeeID string, hireDate, asOf time.Time) (decimal.Decimal, error)
}

type EmployeeDirectory interface {
	GetSnapshot(ctx context.Context, companyID, employeeID string) (employee.Snapshot, error)
}

type Dependencies struct {
	Separations      SeparationReader
	Clearance        ClearanceChecker
	Salaries         SalaryReader
	Leave            LeaveReader
	Employees        EmployeeDirectory
	Outbox           kafka.OutboxRepository
	DefaultCurrency  string
	DailyRateDivisor int
	Now              func() time.Time
}

//go:generate mockgen -source=settlement_service.go -destination=mock/settlement_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actor string, req CreateSettlementRequest) (SettlementResponse, error)
	GetAll(ctx context.Context, companyID string, filter Filter) ([]SettlementResponse, error)
	GetByID(ctx context.Context, companyID, id string) (SettlementResponse, error)
	Update(ctx context.Context, companyID, actor, id string, req UpdateSettlementRequest) (SettlementResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	Calculate(ctx context.Context, companyID, actor, id string, req CalculateRequest) (SettlementResponse, error)
	HRVerify(ctx context.Context, companyID, actor, id string) (SettlementResponse, error)
	FinanceVerify(ctx context.Context, companyID, actor, id string) (SettlementResponse, error)
	Approve(ctx context.Context, companyID, actor, id string) (SettlementResponse, error)
	MarkPaid(ctx context.Context, companyID, actor, id string, req MarkPaidRequest) (SettlementResponse, error)
	IsEligible(ctx context.Context, companyID, separationID string) (EligibilityResponse, error)
	Estimate(ctx context.Context, companyID, id string) (EstimateResponse, error)
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
	l := zap.L().Named("settlement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("settlement.service")
	}
	if deps.DefaultCurrency == "" {
		deps.DefaultCurrency = defaultCurrency
	}
	if deps.DailyRateDivisor <= 0 {
		deps.DailyRateDivisor = defaultDailyRateDivisor
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{db: db, repo: repo, deps: deps, logger: l}
}

var eligibleSeparationStatuses = map[separation.Status]bool{
	separation.StatusClearancePending:  true,
	separation.StatusExitInterview:     true,
	separation.StatusSettlementPending: true,
}

// checkEligibility returns nil when a settlement may be created for sep.
// Ineligibility is reported as INVALID_STATE, an existing settlement as CONFLICT.
func (s *service) checkEligibility(ctx context.Context, companyID string, sep *separation.Separation) error {
	_, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).FindBySeparation(ctx, companyID, sep.ID.String())
	switch {
	case err == nil:
		return settlementerrors.ErrSettlementExists
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if !eligibleSeparationStatuses[sep.Status] {
		return apperror.BlockedTransition(entityName, string(sep.Status), string(StatusDraft),
			"separation must be in clearance_pending, exit_interview or settlement_pending")
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

func (s *service) IsEligible(ctx context.Context, companyID, separationID string) (EligibilityResponse, error) {
	if _, err := uuid.Parse(separationID); err != nil {
		return EligibilityResponse{}, settlementerrors.ErrInvalidSeparationID
	}
	sep, err := s.deps.Separations.Lookup(ctx, companyID, separationID)
	if err != nil {
		return EligibilityResponse{}, err
	}

	resp := EligibilityResponse{SeparationID: separationID, Eligible: true}
	if err := s.checkEligibility(ctx, companyID, sep); err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || (appErr.Code != apperror.CodeInvalidState && appErr.Code != apperror.CodeConflict) {
			return EligibilityResponse{}, err
		}
		resp.Eligible = false
		resp.Reason = appErr.Message
	}
	return resp, nil
}

func (s *service) Create(ctx context.Context, companyID, actor string, req CreateSettlementRequest) (SettlementResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create settlement requested",
		zap.String("company_id", companyID),
		zap.String("separation_id", req.SeparationID),
		zap.String("actor", actor),
	)

	if strings.TrimSpace(actor) == "" {
		return SettlementResponse{}, apperror.ErrActorRequired
	}
	if err := validation.Struct(req); err != nil {
		return SettlementResponse{}, err
	}

	currency := s.deps.DefaultCurrency
	if req.Currency != "" {
		currency = strings.ToUpper(req.Currency)
	}

	var st *Settlement
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		sep, err := s.deps.Separations.Lookup(ctx, companyID, req.SeparationID)
		if err != nil {
			return err
		}

		if err := s.checkEligibility(ctx, companyID, sep); err != nil {
			return err
		}

		st = &Settlement{
			ID:           uuid.New(),
			CompanyID:    sep.CompanyID,
			SeparationID: sep.ID,
			EmployeeID:   sep.EmployeeID,
			EmployeeName: sep.EmployeeName,
			Currency:     currency,
			Status:       StatusDraft,
			Remarks:      req.Remarks,
		}
		st.RecomputeTotals()

		return s.repo.WithTx(tx).Create(ctx, st)
	})
	if err != nil {
		log.Warn("create settlement failed", zap.String("separation_id", req.SeparationID), zap.Error(err))
		return SettlementResponse{}, mapRepositoryError(err)
	}

	log.Info("create settlement success",
		zap.String("settlement_id", st.ID.String()),
		zap.String("separation_id", req.SeparationID),
	)
	return mapToResponse(*st), nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter Filter) ([]SettlementResponse, error) {
	settlements, err := s.repo.FindAll(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	res := make([]SettlementResponse, len(settlements))
	for i, st := range settlements {
		res[i] = mapToResponse(st)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (SettlementResponse, error) {
	st, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SettlementResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*st), nil
}

func (s *service) Update(ctx context.Context, companyID, actor, id string, req UpdateSettlementRequest) (SettlementResponse, error) {
	if strings.TrimSpace(actor) == "" {
		return SettlementResponse{}, apperror.ErrActorRequired
	}
	if err := validation.Struct(req); err != nil {
		return SettlementResponse{}, err
	}

	var st *Settlement
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		st, err = qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if st.Status != StatusDraft {
			metrics.RecordRejected(entityName, string(st.Status), "update")
			return apperror.InvalidTransition(entityName, string(st.Status), "update")
		}

		if req.Currency != nil {
			st.Currency = strings.ToUpper(*req.Currency)
		}
		if req.Remarks != nil {
			st.Remarks = *req.Remarks
		}
		return qtx.Update(ctx, st)
	})
	if err != nil {
		s.logger.Warn("update settlement failed", zap.String("settlement_id", id), zap.Error(err))
		return SettlementResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*st), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		st, err := qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if st.Status != StatusDraft {
			metrics.RecordRejected(entityName, string(st.Status), "delete")
			return apperror.InvalidTransition(entityName, string(st.Status), "delete")
		}
		return qtx.Delete(ctx, companyID, id)
	})
	if err != nil {
		s.logger.Warn("delete settlement failed", zap.String("settlement_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.logger.Info("delete settlement success", zap.String("settlement_id", id))
	return nil
}

// Calculate merges the provided amounts over the stored ones, recomputes the
// totals and submits the settlement for HR verification.
func (s *service) Calculate(ctx context.Context, companyID, actor, id string, req CalculateRequest) (SettlementResponse, error) {
	if err := validateAmounts(req); err != nil {
		return SettlementResponse{}, err
	}

	return s.transition(ctx, companyID, actor, id, StatusPendingHR, func(st *Settlement, at time.Time) {
		applyEarnings(st, req.Earnings)
		applyDeductions(st, req.Deductions)
		st.RecomputeTotals()
		st.CalculatedBy = actor
		st.CalculatedAt = &at
	})
}

func (s *service) HRVerify(ctx context.Context, companyID, actor, id string) (SettlementResponse, error) {
	return s.transition(ctx, companyID, actor, id, StatusPendingFinance, func(st *Settlement, at time.Time) {
		st.HRVerifiedBy = actor
		st.HRVerifiedAt = &at
	})
}

func (s *service) FinanceVerify(ctx context.Context, companyID, actor, id string) (SettlementResponse, error) {
	return s.transition(ctx, companyID, actor, id, StatusPendingApproval, func(st *Settlement, at time.Time) {
		st.FinanceVerifiedBy = actor
		st.FinanceVerifiedAt = &at
	})
}

func (s *service) Approve(ctx context.Context, companyID, actor, id string) (SettlementResponse, error) {
	return s.transition(ctx, companyID, actor, id, StatusApproved, func(st *Settlement, at time.Time) {
		st.ApprovedBy = actor
		st.ApprovedAt = &at
	})
}

func (s *service) MarkPaid(ctx context.Context, companyID, actor, id string, req MarkPaidRequest) (SettlementResponse, error) {
	if err := validation.Struct(req); err != nil {
		return SettlementResponse{}, err
	}
	if req.AmountPaid.IsNegative() {
		return SettlementResponse{}, settlementerrors.ErrNegativeAmount
	}

	return s.transition(ctx, companyID, actor, id, StatusPaid, func(st *Settlement, at time.Time) {
		st.PaymentMethod = PaymentMethod(req.PaymentMethod)
		st.PaymentReference = req.PaymentReference
		st.AmountPaid = decimal.NewNullDecimal(*req.AmountPaid)
		st.PaidAt = &at
	})
}

func (s *service) transition(
	ctx context.Context,
	companyID, actor, id string,
	to Status,
	apply func(st *Settlement, at time.Time),
) (SettlementResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if strings.TrimSpace(actor) == "" {
		return SettlementResponse{}, apperror.ErrActorRequired
	}

	var (
		st   *Settlement
		from Status
	)
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		st, err = qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		from = st.Status

		if !isAllowedStatusTransition(from, to) {
			metrics.RecordRejected(entityName, string(from), string(to))
			return apperror.InvalidTransition(entityName, string(from), string(to))
		}

		now := s.deps.Now().UTC()
		st.Status = to
		apply(st, now)

		if err := qtx.Update(ctx, st); err != nil {
			return err
		}

		return s.enqueueStatusChanged(ctx, tx, st, from, actor, now)
	})
	if err != nil {
		log.Warn("settlement transition failed",
			zap.String("settlement_id", id),
			zap.String("attempted_status", string(to)),
			zap.Error(err),
		)
		return SettlementResponse{}, mapRepositoryError(err)
	}

	metrics.RecordTransition(entityName, string(from), string(to))
	log.Info("settlement status changed",
		zap.String("settlement_id", id),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(to)),
		zap.String("net_payable", money.Display(st.NetPayable)),
		zap.String("actor", actor),
	)
	return mapToResponse(*st), nil
}

func (s *service) enqueueStatusChanged(ctx context.Context, tx *gorm.DB, st *Settlement, from Status, actor string, at time.Time) error {
	if s.deps.Outbox == nil {
		return nil
	}

	event, err := kafka.NewOutboxEvent(ctx,
		events.AggregateSettlement,
		st.ID.String(),
		events.SettlementStatusChanged,
		events.SettlementTopic,
		events.StatusChangedEvent{
			EventType:    events.SettlementStatusChanged,
			SeparationID: st.SeparationID.String(),
			SettlementID: st.ID.String(),
			EmployeeID:   st.EmployeeID.String(),
			CompanyID:    st.CompanyID.String(),
			FromStatus:   string(from),
			ToStatus:     string(st.Status),
			Actor:        actor,
			OccurredAt:   at,
			RequestID:    contextutil.GetRequestID(ctx),
		},
	)
	if err != nil {
		return err
	}

	return s.deps.Outbox.WithTx(tx).Create(ctx, event)
}

// Estimate suggests salary and leave encashment amounts for the final month.
// Salary is prorated by calendar days up to the proposed last day; unused
// annual leave is paid at base / DailyRateDivisor per day.
func (s *service) Estimate(ctx context.Context, companyID, id string) (EstimateResponse, error) {
	st, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EstimateResponse{}, mapRepositoryError(err)
	}

	sep, err := s.deps.Separations.Lookup(ctx, companyID, st.SeparationID.String())
	if err != nil {
		return EstimateResponse{}, err
	}
	employeeID := st.EmployeeID.String()
	lastDay := sep.ProposedLastDay

	snap, err := s.deps.Employees.GetSnapshot(ctx, companyID, employeeID)
	if err != nil {
		return EstimateResponse{}, err
	}

	base, err := s.deps.Salaries.CurrentBaseSalary(ctx, companyID, employeeID, lastDay)
	if err != nil {
		return EstimateResponse{}, err
	}

	leaveDays, err := s.deps.Leave.AnnualBalance(ctx, companyID, employeeID, snap.HireDate, lastDay)
	if err != nil {
		return EstimateResponse{}, err
	}

	daysWorked := decimal.NewFromInt(int64(lastDay.Day()))
	daysInMonth := decimal.NewFromInt(int64(daysIn(lastDay)))
	salary := money.Prorate(base, daysWorked, daysInMonth)

	dailyRate := base.Div(decimal.NewFromInt(int64(s.deps.DailyRateDivisor)))
	encashment := leaveDays.Mul(dailyRate)

	return EstimateResponse{
		SettlementID:           id,
		AsOf:                   lastDay.Format("2006-01-02"),
		BaseSalary:             base,
		DailyRate:              dailyRate,
		SalaryDaysWorked:       daysWorked,
		SalaryAmount:           salary,
		LeaveDaysEncashable:    leaveDays,
		LeaveEncashmentAmount:  encashment,
		SalaryAmountDisplay:    money.Display(salary),
		LeaveEncashmentDisplay: money.Display(encashment),
	}, nil
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (s *service) HasProgressed(ctx context.Context, companyID, separationID string) (bool, error) {
	st, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).FindBySeparation(ctx, companyID, separationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return st.Status != StatusDraft, nil
}

func (s *service) DeleteForSeparation(ctx context.Context, companyID, separationID string) error {
	return dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteBySeparation(ctx, companyID, separationID)
	})
}

func isAllowedStatusTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusPendingHR
	case StatusPendingHR:
		return to == StatusPendingFinance
	case StatusPendingFinance:
		return to == StatusPendingApproval
	case StatusPendingApproval:
		return to == StatusApproved
	case StatusApproved:
		return to == StatusPaid
	default:
		return false
	}
}

func validateAmounts(req CalculateRequest) error {
	e, d := req.Earnings, req.Deductions
	provided := []*decimal.Decimal{
		e.SalaryDaysWorked, e.SalaryAmount, e.LeaveDaysEncashable, e.LeaveEncashmentAmount,
		e.PendingAllowances, e.PendingReimbursements, e.GratuityAmount, e.SeveranceAmount, e.OtherEarnings,
		d.OutstandingAdvances, d.TrainingBondRecovery, d.AssetDamageCharges, d.OtherDeductions, d.TaxDeduction,
	}
	amounts := make([]decimal.Decimal, 0, len(provided))
	for _, v := range provided {
		if v != nil {
			amounts = append(amounts, *v)
		}
	}
	if money.IsNegative(amounts...) {
		return settlementerrors.ErrNegativeAmount
	}
	return nil
}

func merge(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}

func applyEarnings(st *Settlement, e Earnings) {
	merge(&st.SalaryDaysWorked, e.SalaryDaysWorked)
	merge(&st.SalaryAmount, e.SalaryAmount)
	merge(&st.LeaveDaysEncashable, e.LeaveDaysEncashable)
	merge(&st.LeaveEncashmentAmount, e.LeaveEncashmentAmount)
	merge(&st.PendingAllowances, e.PendingAllowances)
	merge(&st.PendingReimbursements, e.PendingReimbursements)
	merge(&st.GratuityAmount, e.GratuityAmount)
	merge(&st.SeveranceAmount, e.SeveranceAmount)
	merge(&st.OtherEarnings, e.OtherEarnings)
}

func applyDeductions(st *Settlement, d Deductions) {
	merge(&st.OutstandingAdvances, d.OutstandingAdvances)
	merge(&st.TrainingBondRecovery, d.TrainingBondRecovery)
	merge(&st.AssetDamageCharges, d.AssetDamageCharges)
	merge(&st.OtherDeductions, d.OtherDeductions)
	merge(&st.TaxDeduction, d.TaxDeduction)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return settlementerrors.ErrSettlementNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return settlementerrors.ErrSettlementExists
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

func mapToResponse(st Settlement) SettlementResponse {
	resp := SettlementResponse{
		ID:                     st.ID.String(),
		SeparationID:           st.SeparationID.String(),
		EmployeeID:             st.EmployeeID.String(),
		EmployeeName:           st.EmployeeName,
		Currency:               st.Currency,
		SalaryDaysWorked:       st.SalaryDaysWorked,
		SalaryAmount:           st.SalaryAmount,
		LeaveDaysEncashable:    st.LeaveDaysEncashable,
		LeaveEncashmentAmount:  st.LeaveEncashmentAmount,
		PendingAllowances:      st.PendingAllowances,
		PendingReimbursements:  st.PendingReimbursements,
		GratuityAmount:         st.GratuityAmount,
		SeveranceAmount:        st.SeveranceAmount,
		OtherEarnings:          st.OtherEarnings,
		OutstandingAdvances:    st.OutstandingAdvances,
		TrainingBondRecovery:   st.TrainingBondRecovery,
		AssetDamageCharges:     st.AssetDamageCharges,
		OtherDeductions:        st.OtherDeductions,
		TaxDeduction:           st.TaxDeduction,
		TotalEarnings:          st.TotalEarnings,
		TotalDeductions:        st.TotalDeductions,
		NetPayable:             st.NetPayable,
		TotalEarningsDisplay:   money.Display(st.TotalEarnings),
		TotalDeductionsDisplay: money.Display(st.TotalDeductions),
		NetPayableDisplay:      money.Display(st.NetPayable),
		Status:                 string(st.Status),
		CalculatedBy:           st.CalculatedBy,
		CalculatedAt:           formatTime(st.CalculatedAt),
		HRVerifiedBy:           st.HRVerifiedBy,
		HRVerifiedAt:           formatTime(st.HRVerifiedAt),
		FinanceVerifiedBy:      st.FinanceVerifiedBy,
		FinanceVerifiedAt:      formatTime(st.FinanceVerifiedAt),
		ApprovedBy:             st.ApprovedBy,
		ApprovedAt:             formatTime(st.ApprovedAt),
		PaymentMethod:          string(st.PaymentMethod),
		PaymentReference:       st.PaymentReference,
		PaidAt:                 formatTime(st.PaidAt),
		Remarks:                st.Remarks,
		CreatedAt:              st.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              st.UpdatedAt.Format(time.RFC3339),
	}
	if st.AmountPaid.Valid {
		paid := st.AmountPaid.Decimal
		resp.AmountPaid = &paid
	}
	return resp
}
