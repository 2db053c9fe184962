package certificate_test

import (
	"context"
	"testing"
	"time"

	"go-offboarding/internal/certificate"
	certificateerrors "go-offboarding/internal/certificate/errors"
	"go-offboarding/internal/employee"
	"go-offboarding/internal/events"
	"go-offboarding/internal/separation"
	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCertificateRepository struct {
	store map[string]certificate.Certificate
	// committed by another transaction after our read
	pending     *certificate.Certificate
	updateCalls int
}

func (f *fakeCertificateRepository) WithTx(tx *gorm.DB) certificate.Repository { return f }

func (f *fakeCertificateRepository) Create(ctx context.Context, c *certificate.Certificate) error {
	rows := make([]certificate.Certificate, 0, len(f.store)+1)
	for _, existing := range f.store {
		rows = append(rows, existing)
	}
	if f.pending != nil {
		rows = append(rows, *f.pending)
	}
	for _, existing := range rows {
		if existing.SeparationID == c.SeparationID &&
			existing.CertificateType == c.CertificateType &&
			existing.Status != certificate.StatusRevoked {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_certificate_active_type"}
		}
	}
	f.store[c.ID.String()] = *c
	return nil
}

func (f *fakeCertificateRepository) FindAll(ctx context.Context, companyID string, filter certificate.Filter) ([]certificate.Certificate, error) {
	var res []certificate.Certificate
	for _, c := range f.store {
		res = append(res, c)
	}
	return res, nil
}

func (f *fakeCertificateRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*certificate.Certificate, error) {
	c, ok := f.store[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeCertificateRepository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*certificate.Certificate, error) {
	return f.FindByIDAndCompany(ctx, companyID, id)
}

func (f *fakeCertificateRepository) ListActiveBySeparation(ctx context.Context, companyID, separationID string) ([]certificate.Certificate, error) {
	var res []certificate.Certificate
	for _, c := range f.store {
		if c.SeparationID.String() == separationID && c.Status != certificate.StatusRevoked {
			res = append(res, c)
		}
	}
	return res, nil
}

func (f *fakeCertificateRepository) ExistsBeyondDraft(ctx context.Context, companyID, separationID string) (bool, error) {
	for _, c := range f.store {
		if c.SeparationID.String() == separationID && c.Status != certificate.StatusDraft {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCertificateRepository) Update(ctx context.Context, c *certificate.Certificate) error {
	f.updateCalls++
	f.store[c.ID.String()] = *c
	return nil
}

func (f *fakeCertificateRepository) Delete(ctx context.Context, companyID, id string) error {
	delete(f.store, id)
	return nil
}

func (f *fakeCertificateRepository) DeleteBySeparation(ctx context.Context, companyID, separationID string) error {
	for id, c := range f.store {
		if c.SeparationID.String() == separationID {
			delete(f.store, id)
		}
	}
	return nil
}

type fakeSeparations struct{ sep *separation.Separation }

func (f *fakeSeparations) Lookup(ctx context.Context, companyID, id string) (*separation.Separation, error) {
	if f.sep.ID.String() != id {
		return nil, apperror.NotFound("separation")
	}
	cp := *f.sep
	return &cp, nil
}

type fakeClearance struct{ cleared bool }

func (f *fakeClearance) IsFullyCleared(ctx context.Context, companyID, separationID string) (bool, error) {
	return f.cleared, nil
}

type fakeEmployees struct{}

var hireDate = time.Date(2019, 8, 1, 0, 0, 0, 0, time.UTC)

func (f *fakeEmployees) GetSnapshot(ctx context.Context, companyID, employeeID string) (employee.Snapshot, error) {
	return employee.Snapshot{EmployeeID: employeeID, HireDate: hireDate}, nil
}

var companyID = uuid.New().String()

const actor = "hr-admin"

type testEnv struct {
	mock      sqlmock.Sqlmock
	svc       certificate.Service
	repo      *fakeCertificateRepository
	sep       *separation.Separation
	clearance *fakeClearance
	outbox    *testutil.FakeOutbox
}

func setup(t *testing.T, status separation.Status) *testEnv {
	t.Helper()

	db, mock := testutil.NewGormMock(t)
	env := &testEnv{
		mock: mock,
		repo: &fakeCertificateRepository{store: map[string]certificate.Certificate{}},
		sep: &separation.Separation{
			ID:                     uuid.New(),
			CompanyID:              uuid.MustParse(companyID),
			EmployeeID:             uuid.New(),
			EmployeeName:           "Siti Rahma",
			Department:             "Engineering",
			Position:               "Backend Engineer",
			ProposedLastDay:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			EligibleForCertificate: true,
			Status:                 status,
		},
		clearance: &fakeClearance{cleared: true},
		outbox:    &testutil.FakeOutbox{},
	}
	env.svc = certificate.NewService(db, env.repo, certificate.Dependencies{
		Separations: &fakeSeparations{sep: env.sep},
		Clearance:   env.clearance,
		Employees:   &fakeEmployees{},
		Counter:     &testutil.FakeCounter{},
		Outbox:      env.outbox,
		Now:         func() time.Time { return time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC) },
	})
	return env
}

func (env *testEnv) create(t *testing.T, certType certificate.Type) (certificate.CertificateResponse, error) {
	t.Helper()
	return env.svc.Create(context.Background(), companyID, actor, certificate.CreateCertificateRequest{
		SeparationID:    env.sep.ID.String(),
		CertificateType: string(certType),
	})
}

func TestCertificateService_Create(t *testing.T) {
	t.Run("prefilled draft", func(t *testing.T) {
		env := setup(t, separation.StatusCompleted)
		testutil.ExpectTx(env.mock, true)

		resp, err := env.create(t, certificate.TypeWorkCertificate)

		require.NoError(t, err)
		assert.Equal(t, "WC-2025-00001", resp.CertificateNumber)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, "Backend Engineer", resp.PositionTitle)
		assert.Equal(t, "Engineering", resp.Department)
		assert.Equal(t, "2019-08-01", resp.EmploymentStartDate)
		assert.Equal(t, "2025-03-31", resp.EmploymentEndDate)
	})

	t.Run("same type twice is a duplicate", func(t *testing.T) {
		env := setup(t, separation.StatusSettlementPending)
		testutil.ExpectTx(env.mock, true)
		_, err := env.create(t, certificate.TypeWorkCertificate)
		require.NoError(t, err)

		testutil.ExpectTx(env.mock, false)
		_, err = env.create(t, certificate.TypeWorkCertificate)
		assert.ErrorIs(t, err, certificateerrors.ErrCertificateExists)

		testutil.ExpectTx(env.mock, true)
		_, err = env.create(t, certificate.TypeExperienceLetter)
		assert.NoError(t, err)
	})

	t.Run("concurrent create of same type is a duplicate", func(t *testing.T) {
		env := setup(t, separation.StatusCompleted)
		env.repo.pending = &certificate.Certificate{
			ID:              uuid.New(),
			SeparationID:    env.sep.ID,
			CertificateType: certificate.TypeWorkCertificate,
			Status:          certificate.StatusDraft,
		}
		testutil.ExpectTx(env.mock, false)

		_, err := env.create(t, certificate.TypeWorkCertificate)

		assert.ErrorIs(t, err, certificateerrors.ErrCertificateExists)
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
		assert.Empty(t, env.repo.store)
	})

	t.Run("revoked certificate does not block the type", func(t *testing.T) {
		env := setup(t, separation.StatusCompleted)
		env.repo.pending = &certificate.Certificate{
			ID:              uuid.New(),
			SeparationID:    env.sep.ID,
			CertificateType: certificate.TypeWorkCertificate,
			Status:          certificate.StatusRevoked,
		}
		testutil.ExpectTx(env.mock, true)

		_, err := env.create(t, certificate.TypeWorkCertificate)

		assert.NoError(t, err)
	})

	t.Run("not eligible for certificate", func(t *testing.T) {
		env := setup(t, separation.StatusCompleted)
		env.sep.EligibleForCertificate = false
		testutil.ExpectTx(env.mock, false)

		_, err := env.create(t, certificate.TypeWorkCertificate)

		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
	})

	t.Run("exit_interview is not certifiable", func(t *testing.T) {
		env := setup(t, separation.StatusExitInterview)
		testutil.ExpectTx(env.mock, false)

		_, err := env.create(t, certificate.TypeWorkCertificate)

		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
	})

	t.Run("clearance incomplete", func(t *testing.T) {
		env := setup(t, separation.StatusClearancePending)
		env.clearance.cleared = false
		testutil.ExpectTx(env.mock, false)

		_, err := env.create(t, certificate.TypeWorkCertificate)

		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
		assert.Empty(t, env.repo.store)
	})
}

func TestCertificateService_IssueAndRevoke(t *testing.T) {
	ctx := context.Background()
	env := setup(t, separation.StatusCompleted)
	testutil.ExpectTx(env.mock, true)
	created, err := env.create(t, certificate.TypeServiceCertificate)
	require.NoError(t, err)

	// revoke draft tidak boleh
	testutil.ExpectTx(env.mock, false)
	_, err = env.svc.Revoke(ctx, companyID, actor, created.ID, "typo")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

	testutil.ExpectTx(env.mock, true)
	issued, err := env.svc.Issue(ctx, companyID, actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "issued", issued.Status)
	assert.Equal(t, actor, issued.IssuedBy)
	assert.NotNil(t, issued.IssueDate)

	testutil.ExpectTx(env.mock, false)
	_, err = env.svc.Update(ctx, companyID, actor, created.ID, certificate.UpdateCertificateRequest{})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

	_, err = env.svc.Revoke(ctx, companyID, actor, created.ID, " ")
	assert.ErrorIs(t, err, certificateerrors.ErrRevocationReasonRequired)

	testutil.ExpectTx(env.mock, true)
	revoked, err := env.svc.Revoke(ctx, companyID, actor, created.ID, "issued with wrong end date")
	require.NoError(t, err)
	assert.Equal(t, "revoked", revoked.Status)
	assert.Equal(t, "issued with wrong end date", revoked.RevocationReason)

	require.Len(t, env.outbox.Events, 2)
	assert.Equal(t, events.CertificateTopic, env.outbox.Events[1].Topic)

	// setelah revoke, tipe yang sama boleh dibuat lagi
	types, err := env.svc.AvailableTypes(ctx, companyID, env.sep.ID.String())
	require.NoError(t, err)
	assert.Contains(t, types.Types, "service_certificate")

	progressed, err := env.svc.HasProgressed(ctx, companyID, env.sep.ID.String())
	require.NoError(t, err)
	assert.True(t, progressed)
}

func TestCertificateService_AvailableTypes(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes active types", func(t *testing.T) {
		env := setup(t, separation.StatusCompleted)
		testutil.ExpectTx(env.mock, true)
		_, err := env.create(t, certificate.TypeWorkCertificate)
		require.NoError(t, err)

		resp, err := env.svc.AvailableTypes(ctx, companyID, env.sep.ID.String())

		require.NoError(t, err)
		assert.Equal(t, []string{"experience_letter", "service_certificate"}, resp.Types)
	})

	t.Run("ineligible separation lists nothing", func(t *testing.T) {
		env := setup(t, separation.StatusApproved)

		resp, err := env.svc.AvailableTypes(ctx, companyID, env.sep.ID.String())

		require.NoError(t, err)
		assert.Empty(t, resp.Types)
	})
}

func TestCertificateService_DraftEditing(t *testing.T) {
	ctx := context.Background()
	env := setup(t, separation.StatusCompleted)
	testutil.ExpectTx(env.mock, true)
	created, err := env.create(t, certificate.TypeExperienceLetter)
	require.NoError(t, err)

	summary := "Built and operated the payroll platform."
	testutil.ExpectTx(env.mock, true)
	updated, err := env.svc.Update(ctx, companyID, actor, created.ID, certificate.UpdateCertificateRequest{DutiesSummary: &summary})
	require.NoError(t, err)
	assert.Equal(t, summary, updated.DutiesSummary)

	testutil.ExpectTx(env.mock, true)
	require.NoError(t, env.svc.Delete(ctx, companyID, created.ID))
	assert.Empty(t, env.repo.store)

	testutil.ExpectTx(env.mock, false)
	err = env.svc.Delete(ctx, companyID, created.ID)
	assert.ErrorIs(t, err, certificateerrors.ErrCertificateNotFound)
}
