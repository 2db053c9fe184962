package department

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	departmenterrors "go-offboarding/internal/department/errors"
	"go-offboarding/internal/shared/dbtx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	ClearanceDepartmentsKeyPrefix = "departments:clearance:"
	DefaultClearanceCacheTTL      = time.Hour
)

func GetClearanceDepartmentsKey(companyID string) string {
	return ClearanceDepartmentsKeyPrefix + companyID
}

//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context, companyID string) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, companyID, id string) (DepartmentResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	ListClearanceDepartments(ctx context.Context, companyID string) ([]ClearanceDepartment, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	rdb      *redis.Client
	sf       *singleflight.Group
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithCacheTTL(db, repo, rdb, DefaultClearanceCacheTTL, logger...)
}

func NewServiceWithCacheTTL(
	db *gorm.DB,
	repo Repository,
	rdb *redis.Client,
	cacheTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultClearanceCacheTTL
	}
	return &service{
		db:       db,
		repo:     repo,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		cacheTTL: cacheTTL,
		logger:   l,
	}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateDepartmentRequest,
) (DepartmentResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidCompanyID
	}

	dept := &Department{
		ID:                uuid.New(),
		Name:              req.Name,
		Description:       req.Description,
		CompanyID:         companyUUID,
		RequiresClearance: req.RequiresClearance,
		IsActive:          boolOrDefault(req.IsActive, true),
		ClearanceOrder:    req.ClearanceOrder,
	}

	err = dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, dept)
	})
	if err != nil {
		s.logger.Error("create department failed", zap.String("company_id", companyID), zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	s.invalidateClearanceCache(ctx, companyID)

	return mapToResponse(*dept), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]DepartmentResponse, error) {

	depts, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return mapToListResponse(depts), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (DepartmentResponse, error) {

	dept, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*dept), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateDepartmentRequest,
) (DepartmentResponse, error) {
	var dept *Department

	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		dept, err = qtx.FindByIDAndCompany(ctx, companyID, id)
		if err != nil {
			return err
		}

		dept.Name = req.Name
		dept.Description = req.Description
		dept.RequiresClearance = req.RequiresClearance
		dept.IsActive = boolOrDefault(req.IsActive, dept.IsActive)
		dept.ClearanceOrder = req.ClearanceOrder

		return qtx.Update(ctx, dept)
	})
	if err != nil {
		s.logger.Error("update department failed", zap.String("department_id", id), zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	s.invalidateClearanceCache(ctx, companyID)

	return mapToResponse(*dept), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, id string,
) error {
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		if _, err := qtx.FindByIDAndCompany(ctx, companyID, id); err != nil {
			return err
		}
		return qtx.Delete(ctx, companyID, id)
	})
	if err != nil {
		return mapRepositoryError(err)
	}

	s.invalidateClearanceCache(ctx, companyID)
	return nil
}

// ListClearanceDepartments returns the active departments that must sign off a
// separation, ordered by clearance_order.
func (s *service) ListClearanceDepartments(ctx context.Context, companyID string) ([]ClearanceDepartment, error) {
	cacheKey := GetClearanceDepartmentsKey(companyID)

	// 1. Cek Redis
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []ClearanceDepartment
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight: banyak separation bisa mulai clearance bersamaan
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		depts, err := s.repo.FindClearanceDepartments(ctx, companyID)
		if err != nil {
			return nil, err
		}

		resp := make([]ClearanceDepartment, len(depts))
		for i, d := range depts {
			resp[i] = ClearanceDepartment{ID: d.ID.String(), Name: d.Name, Order: d.ClearanceOrder}
		}

		// 3. Simpan ke Redis
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("cache clearance departments failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logger.Error("list clearance departments failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}

	return v.([]ClearanceDepartment), nil
}

func (s *service) invalidateClearanceCache(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetClearanceDepartmentsKey(companyID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate clearance departments cache",
			zap.String("company_id", companyID),
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return departmenterrors.ErrDepartmentNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return departmenterrors.ErrDepartmentNameExists
	}
	return err
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func mapToResponse(dept Department) DepartmentResponse {
	return DepartmentResponse{
		ID:                dept.ID.String(),
		Name:              dept.Name,
		Description:       dept.Description,
		CompanyID:         dept.CompanyID.String(),
		RequiresClearance: dept.RequiresClearance,
		IsActive:          dept.IsActive,
		ClearanceOrder:    dept.ClearanceOrder,
		CreatedAt:         dept.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         dept.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}
