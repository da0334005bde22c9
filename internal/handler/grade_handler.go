package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intisuite/aula-api/internal/models"
	"github.com/intisuite/aula-api/internal/service"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
	"github.com/intisuite/aula-api/pkg/response"
)

// GradeServiceAPI is the surface the handler needs from the grade service.
type GradeServiceAPI interface {
	RegisterBulk(ctx context.Context, req service.RegisterBulkGradesRequest, actor models.Actor) (*service.BulkGradesResult, error)
	StudentBlockGrades(ctx context.Context, enrollmentID, blockID string) (*models.StudentBlockGrades, error)
	CourseScores(ctx context.Context, courseOfferingID string, actor models.Actor) (*models.CourseScoresReport, error)
}

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades GradeServiceAPI
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades GradeServiceAPI) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// RegisterBulk godoc
// @Summary Bulk register grades for an evaluation
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.RegisterBulkGradesRequest true "Grade batch"
// @Success 201 {object} response.Envelope
// @Router /grades/bulk [post]
func (h *GradeHandler) RegisterBulk(c *gin.Context) {
	var req service.RegisterBulkGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.grades.RegisterBulk(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// StudentBlockGrades godoc
// @Summary Grades of one enrollment in a block
// @Tags Grades
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param blockId path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/blocks/{blockId}/grades [get]
func (h *GradeHandler) StudentBlockGrades(c *gin.Context) {
	view, err := h.grades.StudentBlockGrades(c.Request.Context(), c.Param("id"), c.Param("blockId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// CourseScores godoc
// @Summary Course-wide score report with statistics
// @Tags Grades
// @Produce json
// @Param id path string true "Course offering ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /course-offerings/{id}/scores [get]
func (h *GradeHandler) CourseScores(c *gin.Context) {
	report, err := h.grades.CourseScores(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
