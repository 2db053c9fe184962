package settlement_test

import (
	"context"
	"testing"
	"time"

	"go-offboarding/internal/employee"
	"go-offboarding/internal/events"
	"go-offboarding/internal/separation"
	"go-offboarding/internal/settlement"
	settlementerrors "go-offboarding/internal/settlement/errors"
	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSettlementRepository keeps soft-deleted rows out of store, so the
// unique separation check only sees live rows like the partial index does.
type fakeSettlementRepository struct {
	store       map[string]settlement.Settlement
	deleted     []settlement.Settlement
	pending     *settlement.Settlement
	updateCalls int
}

func (f *fakeSettlementRepository) WithTx(tx *gorm.DB) settlement.Repository { return f }

func (f *fakeSettlementRepository) Create(ctx context.Context, s *settlement.Settlement) error {
	if f.pending != nil && f.pending.SeparationID == s.SeparationID {
		return &pgconn.PgError{Code: "23505", ConstraintName: "uq_settlement_separation_active"}
	}
	for _, existing := range f.store {
		if existing.SeparationID == s.SeparationID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_settlement_separation_active"}
		}
	}
	f.store[s.ID.String()] = *s
	return nil
}

func (f *fakeSettlementRepository) FindAll(ctx context.Context, companyID string, filter settlement.Filter) ([]settlement.Settlement, error) {
	var res []settlement.Settlement
	for _, s := range f.store {
		res = append(res, s)
	}
	return res, nil
}

func (f *fakeSettlementRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*settlement.Settlement, error) {
	s, ok := f.store[id]
	if !ok || s.CompanyID.String() != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (f *fakeSettlementRepository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*settlement.Settlement, error) {
	return f.FindByIDAndCompany(ctx, companyID, id)
}

func (f *fakeSettlementRepository) FindBySeparation(ctx context.Context, companyID, separationID string) (*settlement.Settlement, error) {
	for _, s := range f.store {
		if s.SeparationID.String() == separationID {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSettlementRepository) Update(ctx context.Context, s *settlement.Settlement) error {
	f.updateCalls++
	f.store[s.ID.String()] = *s
	return nil
}

func (f *fakeSettlementRepository) Delete(ctx context.Context, companyID, id string) error {
	if s, ok := f.store[id]; ok {
		f.deleted = append(f.deleted, s)
		delete(f.store, id)
	}
	return nil
}

func (f *fakeSettlementRepository) DeleteBySeparation(ctx context.Context, companyID, separationID string) error {
	for id, s := range f.store {
		if s.SeparationID.String() == separationID {
			delete(f.store, id)
		}
	}
	return nil
}

type fakeSeparations struct {
	sep *separation.Separation
}

func (f *fakeSeparations) Lookup(ctx context.Context, companyID, id string) (*separation.Separation, error) {
	if f.sep == nil || f.sep.ID.String() != id {
		return nil, apperror.NotFound("separation")
	}
	cp := *f.sep
	return &cp, nil
}

type fakeClearance struct{ cleared bool }

func (f *fakeClearance) IsFullyCleared(ctx context.Context, companyID, separationID string) (bool, error) {
	return f.cleared, nil
}

type fakeSalaries struct{ base decimal.Decimal }

func (f *fakeSalaries) CurrentBaseSalary(ctx context.Context, companyID, employeeID string, asOf time.Time) (decimal.Decimal, error) {
	return f.base, nil
}

type fakeLeave struct{ balance decimal.Decimal }

func (f *fakeLeave) AnnualBalance(ctx context.Context, companyID, employeeID string, hireDate, asOf time.Time) (decimal.Decimal, error) {
	return f.balance, nil
}

type fakeEmployees struct{}

func (f *fakeEmployees) GetSnapshot(ctx context.Context, companyID, employeeID string) (employee.Snapshot, error) {
	return employee.Snapshot{EmployeeID: employeeID, HireDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

var (
	companyID  = uuid.New().String()
	employeeID = uuid.New()
)

const actor = "finance-lead"

type testEnv struct {
	mock      sqlmock.Sqlmock
	svc       settlement.Service
	repo      *fakeSettlementRepository
	sep       *separation.Separation
	clearance *fakeClearance
	outbox    *testutil.FakeOutbox
}

func setup(t *testing.T, status separation.Status) *testEnv {
	t.Helper()

	db, mock := testutil.NewGormMock(t)
	sep := &separation.Separation{
		ID:              uuid.New(),
		CompanyID:       uuid.MustParse(companyID),
		EmployeeID:      employeeID,
		EmployeeName:    "Siti Rahma",
		Status:          status,
		ProposedLastDay: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
	}
	env := &testEnv{
		mock:      mock,
		repo:      &fakeSettlementRepository{store: map[string]settlement.Settlement{}},
		sep:       sep,
		clearance: &fakeClearance{cleared: true},
		outbox:    &testutil.FakeOutbox{},
	}
	env.svc = settlement.NewService(db, env.repo, settlement.Dependencies{
		Separations: &fakeSeparations{sep: sep},
		Clearance:   env.clearance,
		Salaries:    &fakeSalaries{base: decimal.NewFromInt(30000)},
		Leave:       &fakeLeave{balance: decimal.RequireFromString("4.5")},
		Employees:   &fakeEmployees{},
		Outbox:      env.outbox,
	})
	return env
}

func (env *testEnv) create(t *testing.T) settlement.SettlementResponse {
	t.Helper()
	testutil.ExpectTx(env.mock, true)
	resp, err := env.svc.Create(context.Background(), companyID, actor, settlement.CreateSettlementRequest{
		SeparationID: env.sep.ID.String(),
	})
	require.NoError(t, err)
	return resp
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestSettlementService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("first settlement starts as zero draft", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)

		resp := env.create(t)

		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, "IDR", resp.Currency)
		assert.Equal(t, "Siti Rahma", resp.EmployeeName)
		assert.True(t, resp.TotalEarnings.IsZero())
		assert.True(t, resp.TotalDeductions.IsZero())
		assert.True(t, resp.NetPayable.IsZero())
		assert.Equal(t, "0.00", resp.NetPayableDisplay)
	})

	t.Run("second settlement is a duplicate", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		env.create(t)
		testutil.ExpectTx(env.mock, false)

		_, err := env.svc.Create(ctx, companyID, actor, settlement.CreateSettlementRequest{SeparationID: env.sep.ID.String()})

		assert.ErrorIs(t, err, settlementerrors.ErrSettlementExists)
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
		assert.Len(t, env.repo.store, 1)
	})

	t.Run("duplicate is reported after separation completes", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		env.create(t)
		env.sep.Status = separation.StatusCompleted
		testutil.ExpectTx(env.mock, false)

		_, err := env.svc.Create(ctx, companyID, actor, settlement.CreateSettlementRequest{SeparationID: env.sep.ID.String()})

		assert.ErrorIs(t, err, settlementerrors.ErrSettlementExists)
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	})

	t.Run("duplicate is reported before clearance check", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		env.create(t)
		env.clearance.cleared = false
		testutil.ExpectTx(env.mock, false)

		_, err := env.svc.Create(ctx, companyID, actor, settlement.CreateSettlementRequest{SeparationID: env.sep.ID.String()})

		assert.ErrorIs(t, err, settlementerrors.ErrSettlementExists)
	})

	t.Run("concurrent insert maps unique violation to duplicate", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		// baris lain yang baru commit, belum terlihat oleh FindBySeparation
		racer := settlement.Settlement{ID: uuid.New(), SeparationID: env.sep.ID}
		env.repo.pending = &racer
		testutil.ExpectTx(env.mock, false)

		_, err := env.svc.Create(ctx, companyID, actor, settlement.CreateSettlementRequest{SeparationID: env.sep.ID.String()})

		assert.ErrorIs(t, err, settlementerrors.ErrSettlementExists)
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	})

	t.Run("separation not yet in clearance", func(t *testing.T) {
		env := setup(t, separation.StatusApproved)
		testutil.ExpectTx(env.mock, false)

		_, err := env.svc.Create(ctx, companyID, actor, settlement.CreateSettlementRequest{SeparationID: env.sep.ID.String()})

		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
		assert.Empty(t, env.repo.store)
	})

	t.Run("clearance incomplete", func(t *testing.T) {
		env := setup(t, separation.StatusClearancePending)
		env.clearance.cleared = false
		testutil.ExpectTx(env.mock, false)

		_, err := env.svc.Create(ctx, companyID, actor, settlement.CreateSettlementRequest{SeparationID: env.sep.ID.String()})

		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
	})
}

func TestSettlementService_IsEligible(t *testing.T) {
	ctx := context.Background()
	env := setup(t, separation.StatusExitInterview)

	resp, err := env.svc.IsEligible(ctx, companyID, env.sep.ID.String())
	require.NoError(t, err)
	assert.True(t, resp.Eligible)

	env.create(t)

	resp, err = env.svc.IsEligible(ctx, companyID, env.sep.ID.String())
	require.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.NotEmpty(t, resp.Reason)

	_, err = env.svc.IsEligible(ctx, companyID, uuid.NewString())
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

	_, err = env.svc.IsEligible(ctx, companyID, "sep-123")
	assert.ErrorIs(t, err, settlementerrors.ErrInvalidSeparationID)
}

func TestSettlementService_Calculate(t *testing.T) {
	ctx := context.Background()

	t.Run("totals and submission", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		created := env.create(t)
		testutil.ExpectTx(env.mock, true)

		resp, err := env.svc.Calculate(ctx, companyID, actor, created.ID, settlement.CalculateRequest{
			Earnings: settlement.Earnings{
				SalaryDaysWorked:      dec(20),
				SalaryAmount:          dec(50000),
				LeaveEncashmentAmount: dec(5000),
			},
			Deductions: settlement.Deductions{
				OutstandingAdvances: dec(2000),
			},
		})

		require.NoError(t, err)
		assert.True(t, resp.TotalEarnings.Equal(decimal.NewFromInt(55000)), resp.TotalEarnings.String())
		assert.True(t, resp.TotalDeductions.Equal(decimal.NewFromInt(2000)))
		assert.True(t, resp.NetPayable.Equal(decimal.NewFromInt(53000)))
		assert.True(t, resp.TotalEarnings.Sub(resp.TotalDeductions).Equal(resp.NetPayable))
		assert.Equal(t, "pending_hr", resp.Status)
		assert.Equal(t, actor, resp.CalculatedBy)

		require.Len(t, env.outbox.Events, 1)
		assert.Equal(t, events.SettlementTopic, env.outbox.Events[0].Topic)
	})

	t.Run("negative amount", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		created := env.create(t)

		_, err := env.svc.Calculate(ctx, companyID, actor, created.ID, settlement.CalculateRequest{
			Deductions: settlement.Deductions{TaxDeduction: dec(-1)},
		})

		assert.ErrorIs(t, err, settlementerrors.ErrNegativeAmount)
		assert.Zero(t, env.repo.updateCalls)
	})

	t.Run("net payable may be negative", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		created := env.create(t)
		testutil.ExpectTx(env.mock, true)

		resp, err := env.svc.Calculate(ctx, companyID, actor, created.ID, settlement.CalculateRequest{
			Earnings:   settlement.Earnings{SalaryAmount: dec(1000)},
			Deductions: settlement.Deductions{TrainingBondRecovery: dec(4000)},
		})

		require.NoError(t, err)
		assert.True(t, resp.NetPayable.Equal(decimal.NewFromInt(-3000)))
	})

	t.Run("only from draft", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		created := env.create(t)
		testutil.ExpectTx(env.mock, true)
		_, err := env.svc.Calculate(ctx, companyID, actor, created.ID, settlement.CalculateRequest{})
		require.NoError(t, err)
		updates := env.repo.updateCalls

		testutil.ExpectTx(env.mock, false)
		_, err = env.svc.Calculate(ctx, companyID, actor, created.ID, settlement.CalculateRequest{
			Earnings: settlement.Earnings{SalaryAmount: dec(1)},
		})

		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
		assert.Equal(t, updates, env.repo.updateCalls)
	})
}

func TestSettlementService_VerificationChain(t *testing.T) {
	ctx := context.Background()
	env := setup(t, separation.StatusSettlementPending)
	created := env.create(t)
	id := created.ID

	// approve sebelum diverifikasi
	testutil.ExpectTx(env.mock, false)
	_, err := env.svc.Approve(ctx, companyID, actor, id)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

	testutil.ExpectTx(env.mock, true)
	_, err = env.svc.Calculate(ctx, companyID, actor, id, settlement.CalculateRequest{
		Earnings: settlement.Earnings{SalaryAmount: dec(10000)},
	})
	require.NoError(t, err)

	testutil.ExpectTx(env.mock, false)
	_, err = env.svc.FinanceVerify(ctx, companyID, actor, id)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

	testutil.ExpectTx(env.mock, true)
	resp, err := env.svc.HRVerify(ctx, companyID, "hr-lead", id)
	require.NoError(t, err)
	assert.Equal(t, "pending_finance", resp.Status)
	assert.Equal(t, "hr-lead", resp.HRVerifiedBy)

	testutil.ExpectTx(env.mock, true)
	resp, err = env.svc.FinanceVerify(ctx, companyID, actor, id)
	require.NoError(t, err)
	assert.Equal(t, "pending_approval", resp.Status)

	testutil.ExpectTx(env.mock, true)
	resp, err = env.svc.Approve(ctx, companyID, "director", id)
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)

	_, err = env.svc.MarkPaid(ctx, companyID, actor, id, settlement.MarkPaidRequest{
		PaymentMethod: "bank_transfer",
		AmountPaid:    dec(-5),
	})
	assert.ErrorIs(t, err, settlementerrors.ErrNegativeAmount)

	_, err = env.svc.MarkPaid(ctx, companyID, actor, id, settlement.MarkPaidRequest{
		PaymentMethod: "crypto",
		AmountPaid:    dec(10000),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	testutil.ExpectTx(env.mock, true)
	resp, err = env.svc.MarkPaid(ctx, companyID, actor, id, settlement.MarkPaidRequest{
		PaymentMethod:    "bank_transfer",
		PaymentReference: "TRX-001",
		AmountPaid:       dec(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	require.NotNil(t, resp.AmountPaid)
	assert.True(t, resp.AmountPaid.Equal(decimal.NewFromInt(10000)))
	assert.NotNil(t, resp.PaidAt)

	testutil.ExpectTx(env.mock, false)
	_, err = env.svc.HRVerify(ctx, companyID, actor, id)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

	assert.Len(t, env.outbox.Events, 5)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSettlementService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	remarks := "includes notice pay"

	t.Run("draft editable", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		created := env.create(t)
		testutil.ExpectTx(env.mock, true)
		currency := "usd"

		resp, err := env.svc.Update(ctx, companyID, actor, created.ID, settlement.UpdateSettlementRequest{
			Currency: &currency,
			Remarks:  &remarks,
		})

		require.NoError(t, err)
		assert.Equal(t, "USD", resp.Currency)
		assert.Equal(t, remarks, resp.Remarks)
	})

	t.Run("not editable after calculate", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		created := env.create(t)
		testutil.ExpectTx(env.mock, true)
		_, err := env.svc.Calculate(ctx, companyID, actor, created.ID, settlement.CalculateRequest{})
		require.NoError(t, err)

		testutil.ExpectTx(env.mock, false)
		_, err = env.svc.Update(ctx, companyID, actor, created.ID, settlement.UpdateSettlementRequest{Remarks: &remarks})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

		testutil.ExpectTx(env.mock, false)
		err = env.svc.Delete(ctx, companyID, created.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

		progressed, err := env.svc.HasProgressed(ctx, companyID, env.sep.ID.String())
		require.NoError(t, err)
		assert.True(t, progressed)
	})

	t.Run("delete draft", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		created := env.create(t)
		testutil.ExpectTx(env.mock, true)

		require.NoError(t, env.svc.Delete(ctx, companyID, created.ID))
		assert.Empty(t, env.repo.store)
	})

	t.Run("deleted draft can be created again", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		first := env.create(t)
		testutil.ExpectTx(env.mock, true)
		require.NoError(t, env.svc.Delete(ctx, companyID, first.ID))

		eligibility, err := env.svc.IsEligible(ctx, companyID, env.sep.ID.String())
		require.NoError(t, err)
		assert.True(t, eligibility.Eligible)

		second := env.create(t)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, "draft", second.Status)
		assert.Len(t, env.repo.store, 1)
		assert.Len(t, env.repo.deleted, 1)
	})
}

func TestSettlementService_Estimate(t *testing.T) {
	env := setup(t, separation.StatusSettlementPending)
	created := env.create(t)

	resp, err := env.svc.Estimate(context.Background(), companyID, created.ID)

	require.NoError(t, err)
	assert.Equal(t, "2025-04-15", resp.AsOf)
	assert.True(t, resp.SalaryDaysWorked.Equal(decimal.NewFromInt(15)))
	assert.True(t, resp.SalaryAmount.Equal(decimal.NewFromInt(15000)), resp.SalaryAmount.String())
	assert.True(t, resp.DailyRate.Equal(decimal.NewFromInt(1000)))
	assert.True(t, resp.LeaveEncashmentAmount.Equal(decimal.NewFromInt(4500)), resp.LeaveEncashmentAmount.String())
	assert.Equal(t, "15000.00", resp.SalaryAmountDisplay)

	stored := env.repo.store[created.ID]
	assert.True(t, stored.SalaryAmount.IsZero())
}
