package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
	"github.com/tapin-io/attendance-api/pkg/response"
)

type attendanceService interface {
	CheckIn(ctx context.Context, readerToken string, req dto.CheckInRequest) (*dto.CheckInResponse, error)
	Feed(ctx context.Context, orgID string, query dto.FeedQuery) ([]models.CheckInDetail, error)
}

// AttendanceHandler wires the scanner ingress and the live feed.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// CheckIn godoc
// @Summary RFID check-in
// @Description Record a card scan against the reader's ongoing event
// @Tags Attendance
// @Accept json
// @Produce json
// @Param X-Reader-Token header string true "Reader token"
// @Param payload body dto.CheckInRequest true "Scan payload"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scan payload"))
		return
	}
	result, err := h.service.CheckIn(c.Request.Context(), c.GetHeader("X-Reader-Token"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Feed godoc
// @Summary Live check-in feed
// @Description Newest check-ins for the organization; pass after= to resume polling
// @Tags Attendance
// @Produce json
// @Param event_id query string false "Restrict to one event"
// @Param after query string false "RFC3339 timestamp to resume from"
// @Param limit query int false "Row cap (default 50)"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/feed [get]
func (h *AttendanceHandler) Feed(c *gin.Context) {
	var query dto.FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feed query"))
		return
	}
	details, err := h.service.Feed(c.Request.Context(), orgIDFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}
