package clearance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-offboarding/internal/clearance"
	clearanceerrors "go-offboarding/internal/clearance/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeClearanceService struct {
	clearance.Service
	FlagIssuesFn func(ctx context.Context, companyID, actor, id string, req clearance.FlagIssuesRequest) (clearance.ClearanceResponse, error)
	MarkFn       func(ctx context.Context, companyID, actor, id, notes string) (clearance.ClearanceResponse, error)
	ProgressFn   func(ctx context.Context, companyID, separationID string) (clearance.ProgressResponse, error)
}

func (f *fakeClearanceService) FlagIssues(ctx context.Context, companyID, actor, id string, req clearance.FlagIssuesRequest) (clearance.ClearanceResponse, error) {
	return f.FlagIssuesFn(ctx, companyID, actor, id, req)
}

func (f *fakeClearanceService) MarkCleared(ctx context.Context, companyID, actor, id, notes string) (clearance.ClearanceResponse, error) {
	return f.MarkFn(ctx, companyID, actor, id, notes)
}

func (f *fakeClearanceService) Progress(ctx context.Context, companyID, separationID string) (clearance.ProgressResponse, error) {
	return f.ProgressFn(ctx, companyID, separationID)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", companyID)
	c.Set("employee_id", actor)
	c.Params = gin.Params{{Key: "id", Value: "clr-1"}}
	return c, w
}

func TestClearanceHandler_FlagIssues(t *testing.T) {
	t.Run("missing items", func(t *testing.T) {
		h := clearance.NewHandler(&fakeClearanceService{})
		c, w := newContext(http.MethodPost, "/clearances/clr-1/flag-issues", `{"outstanding_items":[]}`)

		h.FlagIssues(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeClearanceService{
			FlagIssuesFn: func(ctx context.Context, cid, a, id string, req clearance.FlagIssuesRequest) (clearance.ClearanceResponse, error) {
				assert.Equal(t, "clr-1", id)
				assert.Equal(t, actor, a)
				return clearance.ClearanceResponse{ID: id, Status: "issues_found", OutstandingItems: req.OutstandingItems}, nil
			},
		}
		h := clearance.NewHandler(svc)
		c, w := newContext(http.MethodPost, "/clearances/clr-1/flag-issues", `{"outstanding_items":["laptop not returned"]}`)

		h.FlagIssues(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "laptop not returned")
	})
}

func TestClearanceHandler_MarkCleared(t *testing.T) {
	svc := &fakeClearanceService{
		MarkFn: func(ctx context.Context, cid, a, id, notes string) (clearance.ClearanceResponse, error) {
			return clearance.ClearanceResponse{}, clearanceerrors.ErrClearanceNotFound
		},
	}
	h := clearance.NewHandler(svc)
	c, w := newContext(http.MethodPost, "/clearances/clr-1/clear", "")

	h.MarkCleared(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearanceHandler_Progress(t *testing.T) {
	svc := &fakeClearanceService{
		ProgressFn: func(ctx context.Context, cid, sepID string) (clearance.ProgressResponse, error) {
			return clearance.ProgressResponse{SeparationID: sepID, Cleared: 2, Total: 3}, nil
		},
	}
	h := clearance.NewHandler(svc)
	c, w := newContext(http.MethodGet, "/separations/clr-1/clearance-progress", "")

	h.Progress(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cleared":2`)
	assert.Contains(t, w.Body.String(), `"total":3`)
}
