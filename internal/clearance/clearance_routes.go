package clearance

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
	clearances := r.Group("/clearances")
	clearances.Use(auth)
	{
		clearances.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceClearance, domain.ActionRead), h.GetAll)
		clearances.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceClearance, domain.ActionRead), h.GetById)
		clearances.POST("/:id/start-review", middleware.RBACAuthorize(rbacService, domain.ResourceClearance, domain.ActionUpdate), h.StartReview)
		clearances.POST("/:id/clear", middleware.RBACAuthorize(rbacService, domain.ResourceClearance, domain.ActionApprove), h.MarkCleared)
		clearances.POST("/:id/flag-issues", middleware.RBACAuthorize(rbacService, domain.ResourceClearance, domain.ActionUpdate), h.FlagIssues)
	}

	bySeparation := r.Group("/separations/:id")
	bySeparation.Use(auth)
	{
		bySeparation.GET("/clearances", middleware.RBACAuthorize(rbacService, domain.ResourceClearance, domain.ActionRead), h.ListBySeparation)
		bySeparation.GET("/clearance-progress", middleware.RBACAuthorize(rbacService, domain.ResourceClearance, domain.ActionRead), h.Progress)
	}
}
