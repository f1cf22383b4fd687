package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tapin-io/attendance-api/internal/service"
	"github.com/tapin-io/attendance-api/pkg/response"
)

// AccountHandler wires bulk student account provisioning.
type AccountHandler struct {
	service *service.AccountService
}

// NewAccountHandler creates a new handler.
func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{service: svc}
}

// Provision godoc
// @Summary Bulk-provision student accounts
// @Description Create logins for roster students without one; temporary passwords appear only in this response
// @Tags Accounts
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /accounts/provision [post]
func (h *AccountHandler) Provision(c *gin.Context) {
	result, err := h.service.ProvisionAccounts(c.Request.Context(), orgIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
