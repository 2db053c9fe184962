package department

import (
	"go-offboarding/internal/domain"
	"go-offboarding/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
) {
	departments := r.Group("/departments")

	departments.Use(auth)

	{
		departments.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionRead), h.GetAll)
		departments.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionCreate), h.Create)
		departments.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionRead), h.GetById)
		departments.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionUpdate), h.Update)
		departments.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionDelete), h.Delete)
	}
}
