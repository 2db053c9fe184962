package app

import (
	"net/http"

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
	"go-offboarding/internal/separation"
	"go-offboarding/internal/settlement"
	"go-offboarding/internal/shared/connection"
	"go-offboarding/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine, cfg *config.Config) error {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if err := migrate(gormDB); err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
		middleware.RateLimitByIP(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
	)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 2. Register Modules & Routes
	return registerModules(router, cfg, gormDB, redisClient)
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&rbac.Role{},
		&rbac.Permission{},
		&rbac.RolePermission{},
		&rbac.EmployeeRole{},
		&department.Department{},
		&employee.Employee{},
		&employeesalary.EmployeeSalary{},
		&leave.Leave{},
		&counter.Counter{},
		&separation.Separation{},
		&separation.StatusChange{},
		&clearance.Clearance{},
		&settlement.Settlement{},
		&certificate.Certificate{},
		&kafka.OutboxEvent{},
	); err != nil {
		return err
	}

	// index lama tanpa filter deleted_at, menahan re-create setelah soft delete
	m := db.Migrator()
	if m.HasIndex(&settlement.Settlement{}, "uq_settlement_separation") {
		return m.DropIndex(&settlement.Settlement{}, "uq_settlement_separation")
	}
	return nil
}
