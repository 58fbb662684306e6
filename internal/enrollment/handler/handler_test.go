package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/service"
	"cadence_sync_backend/internal/enrollment/transport"
	"cadence_sync_backend/platform/apperr"
	"cadence_sync_backend/platform/httpkit"
	"cadence_sync_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	actor  service.Actor
	it     domain.IntegrationType
	enroll transport.EnrollLeadsRequest
	err    error
}

func (f *fakeSyncer) EnrollLeads(_ context.Context, actor service.Actor, it domain.IntegrationType, req transport.EnrollLeadsRequest) (transport.BatchResponse, error) {
	f.actor, f.it, f.enroll = actor, it, req
	if f.err != nil {
		return transport.BatchResponse{}, f.err
	}
	res := transport.NewBatchResponse()
	res.TotalSuccess = len(req.Leads)
	return res, nil
}

func (f *fakeSyncer) UpdateLeads(context.Context, service.Actor, domain.IntegrationType, transport.UpdateLeadsRequest) (transport.BatchResponse, error) {
	return transport.NewBatchResponse(), f.err
}

func (f *fakeSyncer) UpdateLinkStatus(context.Context, service.Actor, domain.IntegrationType, transport.UpdateLinkStatusRequest) (transport.BatchResponse, error) {
	return transport.NewBatchResponse(), f.err
}

func (f *fakeSyncer) DeleteLeads(context.Context, service.Actor, domain.IntegrationType, transport.DeleteLeadsRequest) (transport.BatchResponse, error) {
	return transport.NewBatchResponse(), f.err
}

func newEngine(svc Syncer, userID uuid.UUID, companyID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		if companyID != nil {
			c.Set(httpkit.ContextTenantIDKey, *companyID)
		}
		c.Next()
	})
	New(svc, validator.New()).RegisterRoutes(r.Group("/crm/:integration"))
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestEnrollLeadsPassesActorAndIntegration(t *testing.T) {
	svc := &fakeSyncer{}
	userID, companyID := uuid.New(), uuid.New()
	r := newEngine(svc, userID, &companyID)

	rec := doJSON(r, http.MethodPost, "/crm/Salesforce_Lead/leads/cadence", map[string]any{
		"leads": []map[string]any{{"lead_id": "00Q1", "cadence_id": uuid.NewString(), "owner_id": "005A"}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.SalesforceLead, svc.it)
	assert.Equal(t, service.Actor{CompanyID: companyID, UserID: userID}, svc.actor)
	require.Len(t, svc.enroll.Leads, 1)
	assert.Equal(t, "00Q1", svc.enroll.Leads[0].LeadID)

	var res transport.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.TotalSuccess)
	assert.NotNil(t, res.ElementError)
}

func TestEnrollLeadsLeavesRecordValidationToService(t *testing.T) {
	svc := &fakeSyncer{}
	companyID := uuid.New()
	r := newEngine(svc, uuid.New(), &companyID)

	rec := doJSON(r, http.MethodPost, "/crm/salesforce_lead/leads/cadence", map[string]any{
		"leads": []map[string]any{{"lead_id": "", "cadence_id": "not-a-uuid"}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, svc.enroll.Leads, 1)
}

func TestRejectsEmptyBatch(t *testing.T) {
	companyID := uuid.New()
	r := newEngine(&fakeSyncer{}, uuid.New(), &companyID)

	rec := doJSON(r, http.MethodPut, "/crm/salesforce_lead/leads", map[string]any{"leads": []any{}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgValidationFailed)
}

func TestRejectsUnknownIntegration(t *testing.T) {
	companyID := uuid.New()
	r := newEngine(&fakeSyncer{}, uuid.New(), &companyID)

	rec := doJSON(r, http.MethodDelete, "/crm/excel/leads", map[string]any{
		"leads": []map[string]any{{"lead_id": "1"}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgUnknownIntegration)
}

func TestRequiresCompany(t *testing.T) {
	r := newEngine(&fakeSyncer{}, uuid.New(), nil)

	rec := doJSON(r, http.MethodPatch, "/crm/hubspot_contact/leads/cadence/status", map[string]any{
		"leads": []map[string]any{{"lead_id": "1", "cadence_id": uuid.NewString(), "status": "stopped"}},
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFullRequestErrorsUseErrorKind(t *testing.T) {
	companyID := uuid.New()
	svc := &fakeSyncer{err: apperr.Internal("field map unavailable")}
	r := newEngine(svc, uuid.New(), &companyID)

	rec := doJSON(r, http.MethodPost, "/crm/salesforce_lead/leads/cadence", map[string]any{
		"leads": []map[string]any{{"lead_id": "1", "cadence_id": uuid.NewString(), "owner_id": "2"}},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body httpkit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal", body.Kind)
	assert.Equal(t, "field map unavailable", body.Error)
}
