package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/middleware"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type fakeDashboardSrv struct {
	analytics  *dto.DashboardAnalytics
	overview   *dto.DashboardOverview
	err        error
	lastOrgID  string
	lastSearch string
}

func (f *fakeDashboardSrv) Analytics(_ context.Context, orgID, search string) (*dto.DashboardAnalytics, error) {
	f.lastOrgID = orgID
	f.lastSearch = search
	return f.analytics, f.err
}

func (f *fakeDashboardSrv) Overview(_ context.Context, orgID string) (*dto.DashboardOverview, error) {
	f.lastOrgID = orgID
	return f.overview, f.err
}

func orgContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:         "user-1",
		Role:           models.RoleOrganization,
		OrganizationID: "org-1",
	})
	return c, rec
}

func TestDashboardHandlerAnalytics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{analytics: &dto.DashboardAnalytics{}}
	h := NewDashboardHandler(srv)

	c, rec := orgContext(t, "/dashboard/analytics?search=cruz")
	h.Analytics(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "org-1", srv.lastOrgID)
	assert.Equal(t, "cruz", srv.lastSearch)
}

func TestDashboardHandlerAnalyticsMissingOrg(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{err: appErrors.ErrNoOrganization}
	h := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/analytics", nil)

	h.Analytics(c)

	assert.Equal(t, appErrors.ErrNoOrganization.Status, rec.Code)
}

func TestDashboardHandlerOverview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{overview: &dto.DashboardOverview{}}
	h := NewDashboardHandler(srv)

	c, rec := orgContext(t, "/dashboard/overview")
	h.Overview(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "org-1", srv.lastOrgID)
}
