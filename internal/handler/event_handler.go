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

type eventService interface {
	Create(ctx context.Context, orgID string, req dto.CreateEventRequest) (*models.Event, error)
	Update(ctx context.Context, orgID, eventID string, req dto.UpdateEventRequest) (*models.Event, error)
	Get(ctx context.Context, orgID, eventID string) (*models.Event, error)
	ListCategorized(ctx context.Context, orgID string) (*dto.CategorizedEvents, error)
	SetActive(ctx context.Context, orgID, eventID string, active bool) error
	Report(ctx context.Context, orgID, eventID string) (*dto.EventReport, error)
}

type reportExporter interface {
	EventReportCSV(report *dto.EventReport) ([]byte, string, error)
	EventReportPDF(report *dto.EventReport) ([]byte, string, error)
}

type reportArchiver interface {
	Archive(filename string, payload []byte) (*dto.ExportTicket, error)
}

// EventHandler wires HTTP endpoints to the event service.
type EventHandler struct {
	events  eventService
	export  reportExporter
	archive reportArchiver
}

// NewEventHandler creates a new handler.
func NewEventHandler(events eventService, export reportExporter, archive reportArchiver) *EventHandler {
	return &EventHandler{events: events, export: export, archive: archive}
}

// Create godoc
// @Summary Schedule an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.events.Create(c.Request.Context(), orgIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.events.Update(c.Request.Context(), orgIDFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Get godoc
// @Summary Fetch one event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), orgIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// List godoc
// @Summary List events grouped by window
// @Description Ongoing, future and past events for the organization
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	result, err := h.events.ListCategorized(c.Request.Context(), orgIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SetActive godoc
// @Summary Toggle whether an event accepts check-ins
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id}/active [patch]
func (h *EventHandler) SetActive(c *gin.Context) {
	var req struct {
		Active *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid toggle payload"))
		return
	}
	if err := h.events.SetActive(c.Request.Context(), orgIDFromContext(c), c.Param("id"), *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Report godoc
// @Summary Event attendance report
// @Description Roster in scan order with arrival statistics; format=json|csv|pdf. With archive=true the rendered export is stored and a signed download ticket returned instead.
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Param format query string false "Report format" Enums(json, csv, pdf)
// @Param archive query bool false "Archive the export and return a download ticket"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id}/report [get]
func (h *EventHandler) Report(c *gin.Context) {
	report, err := h.events.Report(c.Request.Context(), orgIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "json")
	if format == "json" {
		response.JSON(c, http.StatusOK, report, nil)
		return
	}

	var (
		payload     []byte
		filename    string
		contentType string
	)
	switch format {
	case "csv":
		payload, filename, err = h.export.EventReportCSV(report)
		contentType = "text/csv"
	case "pdf":
		payload, filename, err = h.export.EventReportPDF(report)
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "unsupported report format"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	if c.Query("archive") == "true" {
		ticket, err := h.archive.Archive(filename, payload)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, ticket)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
