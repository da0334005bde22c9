package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intisuite/aula-api/internal/models"
	"github.com/intisuite/aula-api/internal/service"
	"github.com/intisuite/aula-api/pkg/response"
)

// ExportServiceAPI is the surface the handler needs from the export service.
type ExportServiceAPI interface {
	CourseScoresExport(ctx context.Context, courseOfferingID, format string, actor models.Actor) (*service.ScoreExport, error)
}

// ExportHandler serves downloadable score reports.
type ExportHandler struct {
	exports ExportServiceAPI
}

// NewExportHandler constructs handler.
func NewExportHandler(exports ExportServiceAPI) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// CourseScoresExport godoc
// @Summary Download the course score report
// @Tags Grades
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course offering ID"
// @Param format query string false "Export format (csv|pdf)" default(csv)
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /course-offerings/{id}/scores/export [get]
func (h *ExportHandler) CourseScoresExport(c *gin.Context) {
	result, err := h.exports.CourseScoresExport(c.Request.Context(), c.Param("id"), c.Query("format"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
