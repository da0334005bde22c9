package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intisuite/aula-api/internal/service"
	"github.com/intisuite/aula-api/pkg/response"
)

// SystemHandler exposes lightweight runtime diagnostics.
type SystemHandler struct {
	metrics *service.MetricsService
}

// NewSystemHandler constructs handler.
func NewSystemHandler(metrics *service.MetricsService) *SystemHandler {
	return &SystemHandler{metrics: metrics}
}

// Metrics godoc
// @Summary Aggregated runtime metrics snapshot
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /system/metrics [get]
func (h *SystemHandler) Metrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot())
}
