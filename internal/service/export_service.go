package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/intisuite/aula-api/internal/models"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
	"github.com/intisuite/aula-api/pkg/export"
)

type courseScoreProvider interface {
	CourseScores(ctx context.Context, courseOfferingID string, actor models.Actor) (*models.CourseScoresReport, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ScoreExport is a rendered score report ready to be served.
type ScoreExport struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// ExportService renders the course score report as CSV or PDF.
type ExportService struct {
	scores courseScoreProvider
	csv    tableRenderer
	pdf    tableRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(scores courseScoreProvider, csv tableRenderer, pdf tableRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{scores: scores, csv: csv, pdf: pdf, logger: logger}
}

// CourseScoresExport renders the score report for a course offering.
// Supported formats: csv, pdf. Authorization is delegated to the score
// provider, so a denial surfaces before anything is rendered.
func (s *ExportService) CourseScoresExport(ctx context.Context, courseOfferingID, format string, actor models.Actor) (*ScoreExport, error) {
	report, err := s.scores.CourseScores(ctx, courseOfferingID, actor)
	if err != nil {
		return nil, err
	}

	table := buildScoreTable(report)

	switch strings.ToLower(format) {
	case "csv", "":
		payload, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ScoreExport{
			Payload:     payload,
			Filename:    fmt.Sprintf("notas-%s.csv", courseOfferingID),
			ContentType: "text/csv",
		}, nil
	case "pdf":
		payload, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ScoreExport{
			Payload:     payload,
			Filename:    fmt.Sprintf("notas-%s.pdf", courseOfferingID),
			ContentType: "application/pdf",
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("formato no soportado: %s", format))
	}
}

func buildScoreTable(report *models.CourseScoresReport) export.Table {
	table := export.Table{
		Title:   "Reporte de notas",
		Columns: []string{"Estudiante", "Teoría", "Práctica", "Promedio Final", "Condición"},
		Rows:    make([][]string, 0, len(report.Students)),
	}
	for _, student := range report.Students {
		condition := "Desaprobado"
		if student.FinalScore >= passingThreshold {
			condition = "Aprobado"
		}
		table.Rows = append(table.Rows, []string{
			student.Name,
			formatScore(student.TheoryScore),
			formatScore(student.PracticeScore),
			fmt.Sprintf("%.2f", student.FinalScore),
			condition,
		})
	}
	return table
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *score)
}
