package middleware

import (
	"net/http"

	"go-offboarding/internal/domain"
	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContextKey string

const (
	ContextEmployeeID ContextKey = "employee_id"
	ContextCompanyID  ContextKey = "company_id"
)

// RBACService adalah interface lokal.
// Apapun package yang punya method Enforce(domain.EnforceRequest) bisa masuk ke sini.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := c.GetString(string(ContextEmployeeID))
		companyID := c.GetString(string(ContextCompanyID))

		if employeeID == "" || companyID == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context", nil)
			c.Abort()
			return
		}

		req := domain.EnforceRequest{
			EmployeeID: employeeID,
			CompanyID:  companyID,
			Resource:   resource,
			Action:     action,
		}

		allowed, err := service.Enforce(req)
		if err != nil {
			zap.L().Named("middleware.rbac").Error("enforce failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message, nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code, apperror.ErrForbidden.Message,
				gin.H{"required": resource + ":" + action})
			c.Abort()
			return
		}
		c.Next()
	}
}
