package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/service"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
	"github.com/tapin-io/attendance-api/pkg/response"
)

// InsightHandler wires the AI insight storage surface.
type InsightHandler struct {
	service *service.InsightService
}

// NewInsightHandler creates a new handler.
func NewInsightHandler(svc *service.InsightService) *InsightHandler {
	return &InsightHandler{service: svc}
}

// Ingest godoc
// @Summary Store an AI insight
// @Description Callback endpoint for the external analysis workflow
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body dto.IngestInsightRequest true "Insight payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /insights [post]
func (h *InsightHandler) Ingest(c *gin.Context) {
	var req dto.IngestInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid insight payload"))
		return
	}
	insight, err := h.service.Ingest(c.Request.Context(), orgIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, insight)
}

// List godoc
// @Summary List AI insights
// @Tags Insights
// @Produce json
// @Param event_id query string false "Restrict to one event"
// @Param type query string false "Insight type"
// @Param limit query int false "Row cap (default 20)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /insights [get]
func (h *InsightHandler) List(c *gin.Context) {
	var query dto.ListInsightsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid insight query"))
		return
	}
	insights, err := h.service.List(c.Request.Context(), orgIDFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, insights, nil)
}
