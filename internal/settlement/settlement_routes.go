package settlement

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

	settlements := r.Group("/settlements")
	settlements.Use(auth)
	{
		settlements.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionRead), h.GetAll)
		settlements.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionRead), h.GetById)
		settlements.GET("/:id/estimate", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionRead), h.Estimate)
		if redisClient != nil {
			settlements.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionCreate),
				h.Create,
			)
		} else {
			settlements.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionCreate), h.Create)
		}
		settlements.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionUpdate), h.Update)
		settlements.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionDelete), h.Delete)

		settlements.POST("/:id/calculate", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionUpdate), h.Calculate)
		settlements.POST("/:id/hr-verify", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionVerify), h.HRVerify)
		settlements.POST("/:id/finance-verify", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionVerify), h.FinanceVerify)
		settlements.POST("/:id/approve", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionApprove), h.Approve)
		settlements.POST("/:id/mark-paid", middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionPay), h.MarkPaid)
	}

	r.GET("/separations/:id/settlement-eligibility",
		auth,
		middleware.RBACAuthorize(rbacService, domain.ResourceSettlement, domain.ActionRead),
		h.Eligibility,
	)
}
