package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/pkg/response"
)

type studentPortalService interface {
	Portal(ctx context.Context, studentID string) (*dto.StudentPortal, error)
}

// StudentHandler serves the student portal.
type StudentHandler struct {
	service studentPortalService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc studentPortalService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// Portal godoc
// @Summary Student portal home
// @Description Upcoming events plus the student's recent attendance
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /students/me/portal [get]
func (h *StudentHandler) Portal(c *gin.Context) {
	portal, err := h.service.Portal(c.Request.Context(), studentIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, portal, nil)
}
