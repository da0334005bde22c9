package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/intisuite/aula-api/internal/models"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
)

// passingThreshold is the fixed pass mark on the 0-20 scale.
const passingThreshold = 10.5

type evaluationReader interface {
	FindByID(ctx context.Context, id string) (*models.Evaluation, error)
	ListByBlock(ctx context.Context, blockID string) ([]models.Evaluation, error)
}

type gradeRepository interface {
	FetchByEvaluation(ctx context.Context, evaluationID string, enrollmentIDs []string) (map[string]models.Grade, error)
	FetchByEnrollmentForBlock(ctx context.Context, enrollmentID, blockID string) ([]models.Grade, error)
	BulkUpsert(ctx context.Context, grades []models.Grade) ([]models.Grade, error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByOffering(ctx context.Context, courseOfferingID string) ([]models.Enrollment, error)
}

type enrollmentBlockReader interface {
	ListEnrollmentBlocks(ctx context.Context, enrollmentIDs []string) ([]models.EnrollmentBlock, error)
}

type blockLister interface {
	ListByOffering(ctx context.Context, courseOfferingID string) ([]models.Block, error)
}

type offeringAccessResolver interface {
	RequireOfferingAccess(ctx context.Context, userID, role, courseOfferingID string) (*models.BlockAccess, error)
}

// GradeRecordInput is a single entry of a bulk grade registration.
type GradeRecordInput struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	Score        float64 `json:"score" validate:"gte=0,lte=20"`
}

// RegisterBulkGradesRequest is the bulk grade payload.
type RegisterBulkGradesRequest struct {
	EvaluationID string             `json:"evaluation_id" validate:"required"`
	Records      []GradeRecordInput `json:"records" validate:"dive"`
}

// BulkGradesResult summarises a bulk grade registration.
type BulkGradesResult struct {
	Grades         []models.Grade `json:"grades"`
	TotalProcessed int            `json:"total_processed"`
	EvaluationInfo string         `json:"evaluation_info"`
}

// GradeService owns weighted-average computation, bulk grade registration and
// course-wide statistics.
type GradeService struct {
	evaluations      evaluationReader
	grades           gradeRepository
	enrollments      enrollmentReader
	enrollmentBlocks enrollmentBlockReader
	blocks           blockLister
	access           offeringAccessResolver
	directory        userDirectory
	cache            *CacheService
	validator        *validator.Validate
	logger           *zap.Logger
	round            func(float64) float64
}

// NewGradeService constructs GradeService.
func NewGradeService(evaluations evaluationReader, grades gradeRepository, enrollments enrollmentReader, enrollmentBlocks enrollmentBlockReader, blocks blockLister, access offeringAccessResolver, directory userDirectory, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		evaluations:      evaluations,
		grades:           grades,
		enrollments:      enrollments,
		enrollmentBlocks: enrollmentBlocks,
		blocks:           blocks,
		access:           access,
		directory:        directory,
		cache:            cache,
		validator:        validate,
		logger:           logger,
		round:            func(v float64) float64 { return math.Round(v*100) / 100 },
	}
}

// WeightedAverage computes Σ(score·weight)/Σ(weight) over a block's
// evaluations, 2-decimal rounded. An evaluation with no grade counts as score
// zero; zero total weight yields zero.
func (s *GradeService) WeightedAverage(evaluations []models.Evaluation, scores map[string]float64) float64 {
	if len(evaluations) == 0 {
		return 0
	}
	totalWeight := 0.0
	sum := 0.0
	for _, evaluation := range evaluations {
		totalWeight += evaluation.Weight
		sum += scores[evaluation.ID] * evaluation.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return s.round(sum / totalWeight)
}

// StudentBlockGrades returns one enrollment's grades in a block together with
// the weighted average.
func (s *GradeService) StudentBlockGrades(ctx context.Context, enrollmentID, blockID string) (*models.StudentBlockGrades, error) {
	if _, err := s.enrollments.FindByID(ctx, enrollmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "matrícula no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	evaluations, err := s.evaluations.ListByBlock(ctx, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	grades, err := s.grades.FetchByEnrollmentForBlock(ctx, enrollmentID, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grades")
	}

	scoreByEvaluation := make(map[string]float64, len(grades))
	for _, grade := range grades {
		scoreByEvaluation[grade.EvaluationID] = grade.Score
	}

	view := &models.StudentBlockGrades{
		EnrollmentID: enrollmentID,
		BlockID:      blockID,
		Evaluations:  make([]models.EvaluationGrade, 0, len(evaluations)),
	}
	for _, evaluation := range evaluations {
		entry := models.EvaluationGrade{
			EvaluationID:   evaluation.ID,
			Title:          evaluation.Title,
			EvaluationDate: evaluation.EvaluationDate,
			Weight:         evaluation.Weight,
		}
		if score, ok := scoreByEvaluation[evaluation.ID]; ok {
			value := score
			entry.Score = &value
		}
		view.Evaluations = append(view.Evaluations, entry)
	}
	view.Average = s.WeightedAverage(evaluations, scoreByEvaluation)
	return view, nil
}

// RegisterBulk upserts grades for one evaluation. The existing-row lookup is
// batched but each record keeps per-record upsert semantics on
// (evaluation_id, enrollment_id).
func (s *GradeService) RegisterBulk(ctx context.Context, req RegisterBulkGradesRequest, actor models.Actor) (*BulkGradesResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "registro de notas inválido")
	}

	evaluation, err := s.evaluations.FindByID(ctx, req.EvaluationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluación no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}

	if actor.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "solo los docentes pueden registrar notas")
	}

	if len(req.Records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "debe enviar al menos una nota")
	}

	enrollmentIDs := make([]string, 0, len(req.Records))
	seen := make(map[string]struct{}, len(req.Records))
	for _, record := range req.Records {
		if _, dup := seen[record.EnrollmentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("matrícula %s duplicada en el lote", record.EnrollmentID))
		}
		seen[record.EnrollmentID] = struct{}{}

		if _, err := s.enrollments.FindByID(ctx, record.EnrollmentID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("matrícula %s no encontrada", record.EnrollmentID))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		enrollmentIDs = append(enrollmentIDs, record.EnrollmentID)
	}

	existing, err := s.grades.FetchByEvaluation(ctx, evaluation.ID, enrollmentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch existing grades")
	}

	records := make([]models.Grade, len(req.Records))
	for i, input := range req.Records {
		grade := models.Grade{
			EvaluationID: evaluation.ID,
			EnrollmentID: input.EnrollmentID,
			Score:        input.Score,
		}
		if prev, ok := existing[input.EnrollmentID]; ok {
			grade.ID = prev.ID
			grade.CreatedAt = prev.CreatedAt
		}
		records[i] = grade
	}

	saved, err := s.grades.BulkUpsert(ctx, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade batch")
	}

	s.cache.Invalidate(ctx, "reports:scores:offering:*")

	return &BulkGradesResult{
		Grades:         saved,
		TotalProcessed: len(saved),
		EvaluationInfo: fmt.Sprintf("%s — %s", evaluation.Title, formatDateES(evaluation.EvaluationDate)),
	}, nil
}

// CourseScores builds the course-wide score report: per-student theory and
// practice block averages, final scores, and population statistics. Only
// teachers assigned somewhere in the offering may read it.
func (s *GradeService) CourseScores(ctx context.Context, courseOfferingID string, actor models.Actor) (*models.CourseScoresReport, error) {
	if _, err := s.access.RequireOfferingAccess(ctx, actor.UserID, actor.Role, courseOfferingID); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("reports:scores:offering:%s", courseOfferingID)
	var cached models.CourseScoresReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	enrollments, err := s.enrollments.ListByOffering(ctx, courseOfferingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if len(enrollments) == 0 {
		return &models.CourseScoresReport{Students: []models.StudentScore{}}, nil
	}

	blocks, err := s.blocks.ListByOffering(ctx, courseOfferingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blocks")
	}
	blockTypes := make(map[string]models.BlockType, len(blocks))
	for _, block := range blocks {
		blockTypes[block.ID] = block.BlockType
	}

	enrollmentIDs := make([]string, len(enrollments))
	userIDs := make([]string, len(enrollments))
	for i, enrollment := range enrollments {
		enrollmentIDs[i] = enrollment.ID
		userIDs[i] = enrollment.UserID
	}

	enrollmentBlocks, err := s.enrollmentBlocks.ListEnrollmentBlocks(ctx, enrollmentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollment blocks")
	}
	type blockScores struct {
		theory   *float64
		practice *float64
	}
	scoresByEnrollment := make(map[string]blockScores, len(enrollments))
	for _, eb := range enrollmentBlocks {
		entry := scoresByEnrollment[eb.EnrollmentID]
		switch blockTypes[eb.BlockID] {
		case models.BlockTypeTheory:
			entry.theory = eb.BlockAverage
		case models.BlockTypePractice:
			entry.practice = eb.BlockAverage
		}
		scoresByEnrollment[eb.EnrollmentID] = entry
	}

	profiles := fetchProfiles(ctx, s.directory, s.logger, userIDs)

	report := &models.CourseScoresReport{Students: make([]models.StudentScore, 0, len(enrollments))}
	finals := make([]float64, 0, len(enrollments))
	for _, enrollment := range enrollments {
		final := 0.0
		if enrollment.FinalAverage != nil {
			final = *enrollment.FinalAverage
		}
		finals = append(finals, final)

		entry := scoresByEnrollment[enrollment.ID]
		report.Students = append(report.Students, models.StudentScore{
			UserID:        enrollment.UserID,
			Name:          profiles[enrollment.UserID].Name,
			TheoryScore:   entry.theory,
			PracticeScore: entry.practice,
			FinalScore:    final,
		})
	}

	report.Meta = s.courseStatistics(finals)
	s.cache.Set(ctx, cacheKey, report)
	return report, nil
}

// courseStatistics computes mean, extremes, population standard deviation and
// pass/fail counts. Empty input short-circuits to all zeros.
func (s *GradeService) courseStatistics(finals []float64) models.CourseScoreMeta {
	if len(finals) == 0 {
		return models.CourseScoreMeta{}
	}

	sum := 0.0
	high := finals[0]
	low := finals[0]
	passed := 0
	for _, score := range finals {
		sum += score
		if score > high {
			high = score
		}
		if score < low {
			low = score
		}
		if score >= passingThreshold {
			passed++
		}
	}
	mean := sum / float64(len(finals))

	variance := 0.0
	for _, score := range finals {
		deviation := score - mean
		variance += deviation * deviation
	}
	variance /= float64(len(finals))

	return models.CourseScoreMeta{
		AverageCourse:     s.round(mean),
		HighScore:         high,
		LowScore:          low,
		StandardDeviation: s.round(math.Sqrt(variance)),
		PassedStudents:    passed,
		FailedStudents:    len(finals) - passed,
	}
}
