package handler

import (
	"context"
	"net/http"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/service"
	"cadence_sync_backend/internal/enrollment/transport"
	"cadence_sync_backend/platform/httpkit"
	"cadence_sync_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest     = "invalid request"
	msgValidationFailed   = "validation failed"
	msgUnknownIntegration = "unsupported integration type"
)

// Syncer is the batch API the handler drives.
type Syncer interface {
	EnrollLeads(ctx context.Context, actor service.Actor, it domain.IntegrationType, req transport.EnrollLeadsRequest) (transport.BatchResponse, error)
	UpdateLeads(ctx context.Context, actor service.Actor, it domain.IntegrationType, req transport.UpdateLeadsRequest) (transport.BatchResponse, error)
	UpdateLinkStatus(ctx context.Context, actor service.Actor, it domain.IntegrationType, req transport.UpdateLinkStatusRequest) (transport.BatchResponse, error)
	DeleteLeads(ctx context.Context, actor service.Actor, it domain.IntegrationType, req transport.DeleteLeadsRequest) (transport.BatchResponse, error)
}

// Handler handles CRM sync requests.
type Handler struct {
	svc Syncer
	val *validator.Validator
}

// New creates a new CRM sync handler.
func New(svc Syncer, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the sync routes on a /crm/:integration group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/cadence", h.EnrollLeads)
	rg.PUT("/leads", h.UpdateLeads)
	rg.PATCH("/leads/cadence/status", h.UpdateLinkStatus)
	rg.DELETE("/leads", h.DeleteLeads)
}

func (h *Handler) EnrollLeads(c *gin.Context) {
	var req transport.EnrollLeadsRequest
	actor, it, ok := h.bind(c, &req)
	if !ok {
		return
	}
	res, err := h.svc.EnrollLeads(c.Request.Context(), actor, it, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) UpdateLeads(c *gin.Context) {
	var req transport.UpdateLeadsRequest
	actor, it, ok := h.bind(c, &req)
	if !ok {
		return
	}
	res, err := h.svc.UpdateLeads(c.Request.Context(), actor, it, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) UpdateLinkStatus(c *gin.Context) {
	var req transport.UpdateLinkStatusRequest
	actor, it, ok := h.bind(c, &req)
	if !ok {
		return
	}
	res, err := h.svc.UpdateLinkStatus(c.Request.Context(), actor, it, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) DeleteLeads(c *gin.Context) {
	var req transport.DeleteLeadsRequest
	actor, it, ok := h.bind(c, &req)
	if !ok {
		return
	}
	res, err := h.svc.DeleteLeads(c.Request.Context(), actor, it, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// bind resolves the caller, the :integration path parameter and the request
// body. It writes the error response itself and reports false on failure.
// Only the batch envelope is validated here; records are validated one by one
// so a bad record cannot reject the whole batch.
func (h *Handler) bind(c *gin.Context, req any) (service.Actor, domain.IntegrationType, bool) {
	identity, companyID, ok := httpkit.MustGetCompany(c)
	if !ok {
		return service.Actor{}, "", false
	}
	it, ok := domain.ParseIntegrationType(c.Param("integration"))
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, msgUnknownIntegration, nil)
		return service.Actor{}, "", false
	}
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return service.Actor{}, "", false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Describe(err))
		return service.Actor{}, "", false
	}
	return service.Actor{CompanyID: companyID, UserID: identity.UserID()}, it, true
}
