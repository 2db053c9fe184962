package certificate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-offboarding/internal/certificate"
	certificateerrors "go-offboarding/internal/certificate/errors"
	"go-offboarding/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeCertificateService struct {
	certificate.Service
	CreateFn         func(ctx context.Context, companyID, actor string, req certificate.CreateCertificateRequest) (certificate.CertificateResponse, error)
	RevokeFn         func(ctx context.Context, companyID, actor, id, reason string) (certificate.CertificateResponse, error)
	AvailableTypesFn func(ctx context.Context, companyID, separationID string) (certificate.AvailableTypesResponse, error)
}

func (f *fakeCertificateService) Create(ctx context.Context, companyID, actor string, req certificate.CreateCertificateRequest) (certificate.CertificateResponse, error) {
	return f.CreateFn(ctx, companyID, actor, req)
}

func (f *fakeCertificateService) Revoke(ctx context.Context, companyID, actor, id, reason string) (certificate.CertificateResponse, error) {
	return f.RevokeFn(ctx, companyID, actor, id, reason)
}

func (f *fakeCertificateService) AvailableTypes(ctx context.Context, companyID, separationID string) (certificate.AvailableTypesResponse, error) {
	return f.AvailableTypesFn(ctx, companyID, separationID)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", companyID)
	c.Set("employee_id", actor)
	return c, w
}

func TestCertificateHandler_Create(t *testing.T) {
	sepID := "5b0a7c1e-4f7a-4a53-9d59-2a8f0f0a1b11"

	t.Run("success", func(t *testing.T) {
		svc := &fakeCertificateService{
			CreateFn: func(ctx context.Context, cid, a string, req certificate.CreateCertificateRequest) (certificate.CertificateResponse, error) {
				assert.Equal(t, sepID, req.SeparationID)
				return certificate.CertificateResponse{CertificateNumber: "WC-2025-00001", Status: "draft"}, nil
			},
		}
		h := certificate.NewHandler(svc)
		c, w := newTestContext(http.MethodPost, "/certificates", `{"separation_id":"`+sepID+`","certificate_type":"work_certificate"}`)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "WC-2025-00001")
	})

	t.Run("unknown type", func(t *testing.T) {
		h := certificate.NewHandler(&fakeCertificateService{})
		c, w := newTestContext(http.MethodPost, "/certificates", `{"separation_id":"`+sepID+`","certificate_type":"reference"}`)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate type", func(t *testing.T) {
		svc := &fakeCertificateService{
			CreateFn: func(ctx context.Context, cid, a string, req certificate.CreateCertificateRequest) (certificate.CertificateResponse, error) {
				return certificate.CertificateResponse{}, certificateerrors.ErrCertificateExists
			},
		}
		h := certificate.NewHandler(svc)
		c, w := newTestContext(http.MethodPost, "/certificates", `{"separation_id":"`+sepID+`","certificate_type":"work_certificate"}`)

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("clearance not complete", func(t *testing.T) {
		svc := &fakeCertificateService{
			CreateFn: func(ctx context.Context, cid, a string, req certificate.CreateCertificateRequest) (certificate.CertificateResponse, error) {
				return certificate.CertificateResponse{}, apperror.BlockedTransition("certificate", "clearance_pending", "draft", "all department clearances must be cleared")
			},
		}
		h := certificate.NewHandler(svc)
		c, w := newTestContext(http.MethodPost, "/certificates", `{"separation_id":"`+sepID+`","certificate_type":"work_certificate"}`)

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_STATE")
	})
}

func TestCertificateHandler_Revoke(t *testing.T) {
	t.Run("reason missing", func(t *testing.T) {
		h := certificate.NewHandler(&fakeCertificateService{})
		c, w := newTestContext(http.MethodPost, "/certificates/x/revoke", `{}`)
		c.Params = gin.Params{{Key: "id", Value: "x"}}

		h.Revoke(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeCertificateService{
			RevokeFn: func(ctx context.Context, cid, a, id, reason string) (certificate.CertificateResponse, error) {
				assert.Equal(t, "cert-1", id)
				assert.Equal(t, "wrong end date", reason)
				return certificate.CertificateResponse{ID: id, Status: "revoked", RevocationReason: reason}, nil
			},
		}
		h := certificate.NewHandler(svc)
		c, w := newTestContext(http.MethodPost, "/certificates/cert-1/revoke", `{"reason":"wrong end date"}`)
		c.Params = gin.Params{{Key: "id", Value: "cert-1"}}

		h.Revoke(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"revoked"`)
	})
}

func TestCertificateHandler_AvailableTypes(t *testing.T) {
	svc := &fakeCertificateService{
		AvailableTypesFn: func(ctx context.Context, cid, sepID string) (certificate.AvailableTypesResponse, error) {
			return certificate.AvailableTypesResponse{SeparationID: sepID, Types: []string{"experience_letter"}}, nil
		},
	}
	h := certificate.NewHandler(svc)
	c, w := newTestContext(http.MethodGet, "/separations/sep-1/certificate-types", "")
	c.Params = gin.Params{{Key: "id", Value: "sep-1"}}

	h.AvailableTypes(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "experience_letter")
}
