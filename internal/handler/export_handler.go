package handler

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tapin-io/attendance-api/pkg/response"
)

type exportDownloader interface {
	Open(token string) (*os.File, string, error)
}

// ExportHandler serves archived report exports via signed tokens.
type ExportHandler struct {
	archive exportDownloader
}

// NewExportHandler creates a new handler.
func NewExportHandler(archive exportDownloader) *ExportHandler {
	return &ExportHandler{archive: archive}
}

// Download godoc
// @Summary Download an archived report export
// @Description Streams a previously archived export; the token authorizes access
// @Tags Events
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, filename, err := h.archive.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), contentTypeFor(filename), file, nil)
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".csv"):
		return "text/csv"
	case strings.HasSuffix(filename, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
