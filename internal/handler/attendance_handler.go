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

// AttendanceServiceAPI is the surface the handler needs from the attendance service.
type AttendanceServiceAPI interface {
	RegisterBulk(ctx context.Context, req service.RegisterBulkAttendanceRequest, actor models.Actor) (*service.BulkAttendanceResult, error)
	FindByBlock(ctx context.Context, blockID, enrollmentID string, actor models.Actor) (*models.BlockAttendanceReport, error)
	BlockSessions(ctx context.Context, blockID string, actor models.Actor) (*models.BlockSessionsReport, error)
	SessionWindow(ctx context.Context, classSessionID, timezone string) (*service.TimeWindow, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance AttendanceServiceAPI
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance AttendanceServiceAPI) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// RegisterBulk godoc
// @Summary Bulk register attendance for a class session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RegisterBulkAttendanceRequest true "Attendance batch"
// @Success 201 {object} response.Envelope
// @Router /attendances/bulk [post]
func (h *AttendanceHandler) RegisterBulk(c *gin.Context) {
	var req service.RegisterBulkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.RegisterBulk(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// FindByBlock godoc
// @Summary Weekly attendance report for a block
// @Tags Attendance
// @Produce json
// @Param id path string true "Block ID"
// @Param enrollmentId query string false "Narrow to one enrollment"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id}/attendances [get]
func (h *AttendanceHandler) FindByBlock(c *gin.Context) {
	report, err := h.attendance.FindByBlock(c.Request.Context(), c.Param("id"), c.Query("enrollmentId"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// BlockSessions godoc
// @Summary Block schedule grouped by academic week
// @Tags Attendance
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id}/class-sessions [get]
func (h *AttendanceHandler) BlockSessions(c *gin.Context) {
	report, err := h.attendance.BlockSessions(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// SessionWindow godoc
// @Summary Registration window for a class session
// @Tags Attendance
// @Produce json
// @Param id path string true "Class session ID"
// @Param timezone query string false "IANA timezone"
// @Success 200 {object} response.Envelope
// @Router /class-sessions/{id}/window [get]
func (h *AttendanceHandler) SessionWindow(c *gin.Context) {
	window, err := h.attendance.SessionWindow(c.Request.Context(), c.Param("id"), c.Query("timezone"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window)
}
