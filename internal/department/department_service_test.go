package department_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-offboarding/internal/department"
	departmenterrors "go-offboarding/internal/department/errors"
	"go-offboarding/internal/shared/testutil"

	departmentMock "go-offboarding/internal/department/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	service   department.Service
	repo      *departmentMock.MockRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock := testutil.NewGormMock(t)
	dbRedis, redisMock := redismock.NewClientMock()
	repo := departmentMock.NewMockRepository(ctrl)

	svc := department.NewServiceWithCacheTTL(db, repo, dbRedis, 30*time.Minute)

	return &serviceDeps{
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		redismock: redisMock,
	}
}

func TestDepartmentService_ListClearanceDepartments(t *testing.T) {
	ctx := context.Background()
	companyID := "c56a4180-65aa-42ec-a945-5fd21dec0538"
	cacheKey := department.GetClearanceDepartmentsKey(companyID)

	t.Run("Hit Cache - Harus ambil data dari Redis", func(t *testing.T) {
		deps := setupServiceTest(t)

		cached := []department.ClearanceDepartment{
			{ID: "dept-it", Name: "IT", Order: 1},
			{ID: "dept-fin", Name: "Finance", Order: 2},
		}
		jsonResp, _ := json.Marshal(cached)
		deps.redismock.ExpectGet(cacheKey).SetVal(string(jsonResp))

		// Repo TIDAK dipanggil jika cache hit
		deps.repo.EXPECT().FindClearanceDepartments(gomock.Any(), gomock.Any()).Times(0)

		resp, err := deps.service.ListClearanceDepartments(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Equal(t, "IT", resp[0].Name)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("Miss Cache - Harus ambil dari DB dan simpan ke Redis", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.redismock.ExpectGet(cacheKey).RedisNil()

		itID := uuid.New()
		deps.repo.EXPECT().
			FindClearanceDepartments(ctx, companyID).
			Return([]department.Department{{ID: itID, Name: "IT", ClearanceOrder: 1}}, nil).
			Times(1)

		expected, _ := json.Marshal([]department.ClearanceDepartment{{ID: itID.String(), Name: "IT", Order: 1}})
		deps.redismock.ExpectSet(cacheKey, expected, 30*time.Minute).SetVal("OK")

		resp, err := deps.service.ListClearanceDepartments(ctx, companyID)

		assert.NoError(t, err)
		assert.Equal(t, []department.ClearanceDepartment{{ID: itID.String(), Name: "IT", Order: 1}}, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("Database Error - Harus mengembalikan error", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.redismock.ExpectGet(cacheKey).RedisNil()
		deps.repo.EXPECT().
			FindClearanceDepartments(ctx, companyID).
			Return(nil, errors.New("db connection error"))

		resp, err := deps.service.ListClearanceDepartments(ctx, companyID)

		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestDepartmentService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success invalidates clearance cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := department.CreateDepartmentRequest{Name: "IT", RequiresClearance: true, ClearanceOrder: 1}

		testutil.ExpectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, d *department.Department) error {
				assert.Equal(t, req.Name, d.Name)
				assert.Equal(t, companyID, d.CompanyID.String())
				assert.True(t, d.RequiresClearance)
				assert.True(t, d.IsActive)
				return nil
			})
		deps.redismock.ExpectDel(department.GetClearanceDepartmentsKey(companyID)).SetVal(1)

		resp, err := deps.service.Create(ctx, companyID, req)

		assert.NoError(t, err)
		assert.Equal(t, "IT", resp.Name)
		assert.True(t, resp.RequiresClearance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("repo error -> rollback", func(t *testing.T) {
		deps := setupServiceTest(t)

		testutil.ExpectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(errors.New("db error"))

		_, err := deps.service.Create(ctx, companyID, department.CreateDepartmentRequest{Name: "HR"})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid company id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, "not-a-uuid", department.CreateDepartmentRequest{Name: "HR"})

		assert.ErrorIs(t, err, departmenterrors.ErrInvalidCompanyID)
	})
}

func TestDepartmentService_GetByID(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	targetID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID, targetID).
			Return(&department.Department{ID: uuid.MustParse(targetID), Name: "HR"}, nil).
			Times(1)

		resp, err := deps.service.GetByID(ctx, companyID, targetID)

		assert.NoError(t, err)
		assert.Equal(t, targetID, resp.ID, "ID yang dikembalikan harus sama dengan targetID")
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID, targetID).
			Return(nil, gorm.ErrRecordNotFound)

		resp, err := deps.service.GetByID(ctx, companyID, targetID)

		assert.Empty(t, resp.ID)
		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNotFound)
	})
}

func TestDepartmentService_Update(t *testing.T) {
	ctx := context.Background()
	targetID := uuid.New()
	companyID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		inactive := false
		req := department.UpdateDepartmentRequest{Name: "HR Updated", RequiresClearance: true, IsActive: &inactive}

		testutil.ExpectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(gomock.Any(), companyID.String(), targetID.String()).
			Return(&department.Department{ID: targetID, CompanyID: companyID, Name: "Old HR", IsActive: true}, nil)
		deps.repo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, d *department.Department) error {
				assert.Equal(t, req.Name, d.Name)
				assert.False(t, d.IsActive)
				return nil
			})
		deps.redismock.ExpectDel(department.GetClearanceDepartmentsKey(companyID.String())).SetVal(1)

		resp, err := deps.service.Update(ctx, companyID.String(), targetID.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, req.Name, resp.Name)
		assert.False(t, resp.IsActive)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("error - department not found", func(t *testing.T) {
		deps := setupServiceTest(t)

		testutil.ExpectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(gomock.Any(), companyID.String(), targetID.String()).
			Return(nil, gorm.ErrRecordNotFound)

		resp, err := deps.service.Update(ctx, companyID.String(), targetID.String(), department.UpdateDepartmentRequest{Name: "X"})

		assert.Empty(t, resp.ID)
		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestDepartmentService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	targetID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)

		testutil.ExpectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(gomock.Any(), companyID, targetID).
			Return(&department.Department{ID: uuid.MustParse(targetID)}, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), companyID, targetID).Return(nil)
		deps.redismock.ExpectDel(department.GetClearanceDepartmentsKey(companyID)).SetVal(1)

		err := deps.service.Delete(ctx, companyID, targetID)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("failure - db error", func(t *testing.T) {
		deps := setupServiceTest(t)

		testutil.ExpectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(gomock.Any(), companyID, targetID).
			Return(&department.Department{ID: uuid.MustParse(targetID)}, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), companyID, targetID).Return(errors.New("db error"))

		err := deps.service.Delete(ctx, companyID, targetID)

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
