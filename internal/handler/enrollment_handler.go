package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intisuite/aula-api/internal/models"
	"github.com/intisuite/aula-api/pkg/response"
)

// EnrollmentServiceAPI is the surface the handler needs from the enrollment service.
type EnrollmentServiceAPI interface {
	ListBlockStudents(ctx context.Context, blockID string, actor models.Actor) ([]models.BlockStudent, error)
}

// EnrollmentHandler exposes block roster endpoints.
type EnrollmentHandler struct {
	enrollments EnrollmentServiceAPI
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(enrollments EnrollmentServiceAPI) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// BlockStudents godoc
// @Summary List students enrolled in a block
// @Tags Enrollments
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id}/students [get]
func (h *EnrollmentHandler) BlockStudents(c *gin.Context) {
	students, err := h.enrollments.ListBlockStudents(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}
