package certificate

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

	certificates := r.Group("/certificates")
	certificates.Use(auth)
	{
		certificates.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionRead), h.GetAll)
		certificates.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionRead), h.GetById)
		if redisClient != nil {
			certificates.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionCreate),
				h.Create,
			)
		} else {
			certificates.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionCreate), h.Create)
		}
		certificates.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionUpdate), h.Update)
		certificates.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionDelete), h.Delete)
		certificates.POST("/:id/issue", middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionIssue), h.Issue)
		certificates.POST("/:id/revoke", middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionIssue), h.Revoke)
	}

	r.GET("/separations/:id/certificate-types",
		auth,
		middleware.RBACAuthorize(rbacService, domain.ResourceCertificate, domain.ActionRead),
		h.AvailableTypes,
	)
}
