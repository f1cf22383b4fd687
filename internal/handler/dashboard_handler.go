package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/pkg/response"
)

type dashboardService interface {
	Analytics(ctx context.Context, orgID, search string) (*dto.DashboardAnalytics, error)
	Overview(ctx context.Context, orgID string) (*dto.DashboardOverview, error)
}

// DashboardHandler serves the organization dashboard surfaces.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Analytics godoc
// @Summary Organization dashboard analytics
// @Description Full analytics snapshot: active event, arrival stats, risk breakdown and the annotated student list
// @Tags Dashboard
// @Produce json
// @Param search query string false "Filter the student list by name or student number"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard/analytics [get]
func (h *DashboardHandler) Analytics(c *gin.Context) {
	payload, err := h.service.Analytics(c.Request.Context(), orgIDFromContext(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// Overview godoc
// @Summary Live dashboard tab
// @Description Ongoing event and its newest check-ins
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	payload, err := h.service.Overview(c.Request.Context(), orgIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}
