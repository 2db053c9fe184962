package separation

import (
	"go-offboarding/internal/domain"
	"go-offboarding/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	separations := r.Group("/separations")
	separations.Use(auth)
	{
		separations.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionRead), h.GetAll)
		separations.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionRead), h.GetById)
		if redisClient != nil {
			separations.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionCreate),
				h.Create,
			)
		} else {
			separations.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionCreate), h.Create)
		}
		separations.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionUpdate), h.Update)
		separations.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionDelete), h.Delete)

		separations.POST("/:id/approve", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionApprove), h.Approve)
		separations.POST("/:id/reject", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionApprove), h.Reject)
		separations.POST("/:id/start-clearance", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionUpdate), h.StartClearance)
		separations.POST("/:id/exit-interview", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionUpdate), h.RecordExitInterview)
		separations.POST("/:id/advance", middleware.RBACAuthorize(rbacService, domain.ResourceSeparation, domain.ActionUpdate), h.Advance)
	}
}
