package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/middleware"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type fakeAttendanceSrv struct {
	checkInResp *dto.CheckInResponse
	checkInErr  error
	lastToken   string
	feedResp    []models.CheckInDetail
	feedErr     error
	lastOrgID   string
}

func (f *fakeAttendanceSrv) CheckIn(_ context.Context, readerToken string, req dto.CheckInRequest) (*dto.CheckInResponse, error) {
	f.lastToken = readerToken
	return f.checkInResp, f.checkInErr
}

func (f *fakeAttendanceSrv) Feed(_ context.Context, orgID string, query dto.FeedQuery) ([]models.CheckInDetail, error) {
	f.lastOrgID = orgID
	return f.feedResp, f.feedErr
}

func TestAttendanceHandlerCheckIn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAttendanceSrv{
		checkInResp: &dto.CheckInResponse{
			StudentNo:     "S-001",
			EventID:       "event-1",
			OffsetMinutes: -3,
			Bucket:        models.ArrivalOnTime,
			Timestamp:     time.Now(),
		},
	}
	h := NewAttendanceHandler(srv)

	body, _ := json.Marshal(dto.CheckInRequest{RFIDUID: "04AABBCC"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/check-in", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("X-Reader-Token", "reader-secret")

	h.CheckIn(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "reader-secret", srv.lastToken)
}

func TestAttendanceHandlerCheckInDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&fakeAttendanceSrv{checkInErr: appErrors.ErrDuplicateCheckIn})

	body, _ := json.Marshal(dto.CheckInRequest{RFIDUID: "04AABBCC"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/check-in", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CheckIn(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAttendanceHandlerCheckInRejectsEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&fakeAttendanceSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/check-in", bytes.NewReader(nil))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CheckIn(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandlerFeedUsesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAttendanceSrv{feedResp: []models.CheckInDetail{}}
	h := NewAttendanceHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendance/feed?limit=5", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:         "user-1",
		Role:           models.RoleOrganization,
		OrganizationID: "org-1",
	})

	h.Feed(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "org-1", srv.lastOrgID)
}
