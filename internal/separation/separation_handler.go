package separation

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
	l := zap.L().Named("separation.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("separation.handler")
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
	h.logger.Warn("separation request failed",
		zap.String("method", c.Request.Method),
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

// bindOptionalJSON accepts an empty body for transition endpoints whose
// payload is optional.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dst)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateSeparationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), c.GetString("company_id"), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
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

func (h *Handler) Update(c *gin.Context) {
	var req UpdateSeparationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.GetString("company_id"), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	var req TransitionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req.Reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	var req RejectSeparationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req.Reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) StartClearance(c *gin.Context) {
	resp, err := h.service.StartClearance(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RecordExitInterview(c *gin.Context) {
	var req ExitInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.RecordExitInterview(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Advance(c *gin.Context) {
	var req TransitionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Advance(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req.Reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
