package app

import (
	"context"

	"go-offboarding/internal/certificate"
	"go-offboarding/internal/clearance"
	"go-offboarding/internal/config"
	"go-offboarding/internal/department"
	"go-offboarding/internal/employee"
	"go-offboarding/internal/employeesalary"
	"go-offboarding/internal/leave"
	"go-offboarding/internal/messaging/kafka"
	"go-offboarding/internal/middleware"
	"go-offboarding/internal/rbac"
	"go-offboarding/internal/rbac/infra"
	"go-offboarding/internal/separation"
	"go-offboarding/internal/settlement"
	"go-offboarding/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// separationLookup lets settlement and certificate be built before the
// separation service that lists them as child records.
type separationLookup struct {
	service separation.Service
}

func (l *separationLookup) Lookup(ctx context.Context, companyID, id string) (*separation.Separation, error) {
	return l.service.Lookup(ctx, companyID, id)
}

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	employeeSalaryRepo := employeesalary.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	separationRepo := separation.NewRepository(gormDB)
	clearanceRepo := clearance.NewRepository(gormDB)
	settlementRepo := settlement.NewRepository(gormDB)
	certificateRepo := certificate.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBAC.ModelPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)

	// --- Services ---
	departmentService := department.NewServiceWithCacheTTL(gormDB, departmentRepo, rdb, cfg.Clearance.DepartmentCacheTTL, logger)
	employeeService := employee.NewService(gormDB, employeeRepo, logger)
	employeeSalaryService := employeesalary.NewService(gormDB, employeeSalaryRepo, logger)
	leaveService := leave.NewService(gormDB, leaveRepo, cfg.Leave.AnnualEntitlementDays, logger)
	clearanceService := clearance.NewService(gormDB, clearanceRepo, departmentService, logger)

	separations := &separationLookup{}
	settlementService := settlement.NewService(gormDB, settlementRepo, settlement.Dependencies{
		Separations:      separations,
		Clearance:        clearanceService,
		Salaries:         employeeSalaryService,
		Leave:            leaveService,
		Employees:        employeeService,
		Outbox:           outboxRepo,
		DefaultCurrency:  cfg.Settlement.DefaultCurrency,
		DailyRateDivisor: cfg.Settlement.DailyRateDivisor,
	}, logger)
	certificateService := certificate.NewService(gormDB, certificateRepo, certificate.Dependencies{
		Separations: separations,
		Clearance:   clearanceService,
		Employees:   employeeService,
		Counter:     counterRepo,
		Outbox:      outboxRepo,
	}, logger)
	separationService := separation.NewService(gormDB, separationRepo, separation.Dependencies{
		Employees: employeeService,
		Clearance: clearanceService,
		Counter:   counterRepo,
		Outbox:    outboxRepo,
		Children:  []separation.ChildRecords{clearanceService, settlementService, certificateService},
	}, logger)
	separations.service = separationService

	// --- Handlers ---
	departmentHandler := department.NewHandler(departmentService, logger)
	separationHandler := separation.NewHandler(separationService, logger)
	clearanceHandler := clearance.NewHandler(clearanceService, logger)
	settlementHandler := settlement.NewHandler(settlementService, logger)
	certificateHandler := certificate.NewHandler(certificateService, logger)

	// --- Routes Registration ---
	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret)

	api := router.Group("/api/v1")
	{
		department.RegisterRoutes(api, departmentHandler, rbacService, auth)
		separation.RegisterRoutes(api, separationHandler, rbacService, auth, rdb)
		clearance.RegisterRoutes(api, clearanceHandler, rbacService, auth)
		settlement.RegisterRoutes(api, settlementHandler, rbacService, auth, rdb)
		certificate.RegisterRoutes(api, certificateHandler, rbacService, auth, rdb)
	}

	return nil
}
