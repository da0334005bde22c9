package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intisuite/aula-api/internal/models"
	"github.com/intisuite/aula-api/internal/service"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
)

type exportServiceMock struct {
	export *service.ScoreExport
	err    error
}

func (m *exportServiceMock) CourseScoresExport(ctx context.Context, courseOfferingID, format string, actor models.Actor) (*service.ScoreExport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.export, nil
}

func TestExportHandlerCourseScoresExport(t *testing.T) {
	handler := NewExportHandler(&exportServiceMock{
		export: &service.ScoreExport{
			Payload:     []byte("Estudiante,Promedio Final\n"),
			Filename:    "notas-off-1.csv",
			ContentType: "text/csv",
		},
	})
	c, w := testContext(t, http.MethodGet, "/course-offerings/off-1/scores/export?format=csv", "")
	c.Params = gin.Params{{Key: "id", Value: "off-1"}}

	handler.CourseScoresExport(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "notas-off-1.csv")
	assert.Contains(t, w.Body.String(), "Estudiante")
}

func TestExportHandlerForbidden(t *testing.T) {
	handler := NewExportHandler(&exportServiceMock{
		err: appErrors.Clone(appErrors.ErrForbidden, "no tiene asignaciones en esta oferta de curso"),
	})
	c, w := testContext(t, http.MethodGet, "/course-offerings/off-1/scores/export", "")
	c.Params = gin.Params{{Key: "id", Value: "off-1"}}

	handler.CourseScoresExport(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportHandlerUnsupportedFormat(t *testing.T) {
	handler := NewExportHandler(&exportServiceMock{
		err: appErrors.Clone(appErrors.ErrValidation, "formato no soportado: xlsx"),
	})
	c, w := testContext(t, http.MethodGet, "/course-offerings/off-1/scores/export?format=xlsx", "")
	c.Params = gin.Params{{Key: "id", Value: "off-1"}}

	handler.CourseScoresExport(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
