package clearance

import (
	"net/http"

	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("clearance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("clearance.handler")
	}
	return &Handler{service: service, logger: l}
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("employee_id")
	if actorID == "" {
		actorID = c.GetString("user_id")
	}
	return actorID
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("clearance request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetAll(c *gin.Context) {
	var filter Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.GetAll(c.Request.Context(), c.GetString("company_id"), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, meta := response.Paginate(c, resp)
	response.Success(c, http.StatusOK, page, &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListBySeparation(c *gin.Context) {
	resp, err := h.service.ListBySeparation(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Progress(c *gin.Context) {
	resp, err := h.service.Progress(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) StartReview(c *gin.Context) {
	var req StartReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeBindError(c, err)
			return
		}
	}

	resp, err := h.service.StartReview(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req.Notes)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) MarkCleared(c *gin.Context) {
	var req MarkClearedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeBindError(c, err)
			return
		}
	}

	resp, err := h.service.MarkCleared(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req.Notes)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) FlagIssues(c *gin.Context) {
	var req FlagIssuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.FlagIssues(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
