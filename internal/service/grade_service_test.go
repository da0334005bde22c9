package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intisuite/aula-api/internal/models"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
)

type mockEvaluationRepo struct {
	items   map[string]*models.Evaluation
	byBlock map[string][]models.Evaluation
}

func (m *mockEvaluationRepo) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	if evaluation, ok := m.items[id]; ok {
		cp := *evaluation
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEvaluationRepo) ListByBlock(ctx context.Context, blockID string) ([]models.Evaluation, error) {
	return m.byBlock[blockID], nil
}

type mockGradeRepo struct {
	existing     map[string]models.Grade
	byEnrollment []models.Grade
	upserted     []models.Grade
}

func (m *mockGradeRepo) FetchByEvaluation(ctx context.Context, evaluationID string, enrollmentIDs []string) (map[string]models.Grade, error) {
	return m.existing, nil
}

func (m *mockGradeRepo) FetchByEnrollmentForBlock(ctx context.Context, enrollmentID, blockID string) ([]models.Grade, error) {
	return m.byEnrollment, nil
}

func (m *mockGradeRepo) BulkUpsert(ctx context.Context, grades []models.Grade) ([]models.Grade, error) {
	m.upserted = grades
	return grades, nil
}

type mockEnrollmentRepo struct {
	items  map[string]*models.Enrollment
	byOff  map[string][]models.Enrollment
	ebRows []models.EnrollmentBlock
	roster []models.BlockEnrollmentRow
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if enrollment, ok := m.items[id]; ok {
		cp := *enrollment
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ListByOffering(ctx context.Context, courseOfferingID string) ([]models.Enrollment, error) {
	return m.byOff[courseOfferingID], nil
}

func (m *mockEnrollmentRepo) ListEnrollmentBlocks(ctx context.Context, enrollmentIDs []string) ([]models.EnrollmentBlock, error) {
	return m.ebRows, nil
}

func (m *mockEnrollmentRepo) ListByBlock(ctx context.Context, blockID string) ([]models.BlockEnrollmentRow, error) {
	return m.roster, nil
}

type mockDirectory struct {
	profiles map[string]*models.UserProfile
	failFor  map[string]bool
}

func (m *mockDirectory) FindOne(ctx context.Context, userID string) (*models.UserProfile, error) {
	if m.failFor[userID] {
		return nil, sql.ErrConnDone
	}
	if profile, ok := m.profiles[userID]; ok {
		cp := *profile
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func floatPtr(v float64) *float64 { return &v }

func evalOn(id, blockID, title string, weight float64) models.Evaluation {
	return models.Evaluation{
		ID:             id,
		BlockID:        blockID,
		Title:          title,
		EvaluationDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Weight:         weight,
	}
}

func TestWeightedAverageTwoEvaluations(t *testing.T) {
	svc := NewGradeService(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)

	evaluations := []models.Evaluation{
		evalOn("ev-1", "blk-1", "Parcial", 40),
		evalOn("ev-2", "blk-1", "Final", 60),
	}
	got := svc.WeightedAverage(evaluations, map[string]float64{"ev-1": 14, "ev-2": 16})

	assert.InDelta(t, 15.20, got, 0.0001)
}

func TestWeightedAverageMissingGradeCountsZero(t *testing.T) {
	svc := NewGradeService(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)

	evaluations := []models.Evaluation{
		evalOn("ev-1", "blk-1", "Parcial", 50),
		evalOn("ev-2", "blk-1", "Final", 50),
	}
	got := svc.WeightedAverage(evaluations, map[string]float64{"ev-1": 18})

	assert.InDelta(t, 9.00, got, 0.0001)
}

func TestWeightedAverageZeroWeight(t *testing.T) {
	svc := NewGradeService(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)

	evaluations := []models.Evaluation{evalOn("ev-1", "blk-1", "Parcial", 0)}
	assert.Zero(t, svc.WeightedAverage(evaluations, map[string]float64{"ev-1": 20}))
	assert.Zero(t, svc.WeightedAverage(nil, nil))
}

func TestStudentBlockGradesView(t *testing.T) {
	evaluations := &mockEvaluationRepo{byBlock: map[string][]models.Evaluation{
		"blk-1": {
			evalOn("ev-1", "blk-1", "Parcial", 40),
			evalOn("ev-2", "blk-1", "Final", 60),
		},
	}}
	grades := &mockGradeRepo{byEnrollment: []models.Grade{
		{ID: "g-1", EvaluationID: "ev-1", EnrollmentID: "en-1", Score: 14},
	}}
	enrollments := &mockEnrollmentRepo{items: map[string]*models.Enrollment{
		"en-1": {ID: "en-1", UserID: "u-1"},
	}}
	svc := NewGradeService(evaluations, grades, enrollments, enrollments, nil, nil, nil, nil, nil, nil)

	view, err := svc.StudentBlockGrades(context.Background(), "en-1", "blk-1")
	require.NoError(t, err)

	require.Len(t, view.Evaluations, 2)
	require.NotNil(t, view.Evaluations[0].Score)
	assert.InDelta(t, 14, *view.Evaluations[0].Score, 0.0001)
	assert.Nil(t, view.Evaluations[1].Score)
	assert.InDelta(t, 5.60, view.Average, 0.0001)
}

func TestStudentBlockGradesUnknownEnrollment(t *testing.T) {
	svc := NewGradeService(&mockEvaluationRepo{}, &mockGradeRepo{}, &mockEnrollmentRepo{}, &mockEnrollmentRepo{}, nil, nil, nil, nil, nil, nil)

	_, err := svc.StudentBlockGrades(context.Background(), "no-such", "blk-1")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func gradeFixture() (*GradeService, *mockGradeRepo, *mockEnrollmentRepo) {
	evaluations := &mockEvaluationRepo{items: map[string]*models.Evaluation{
		"ev-1": {ID: "ev-1", BlockID: "blk-1", Title: "Parcial 1", EvaluationDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), Weight: 40},
	}}
	grades := &mockGradeRepo{}
	enrollments := &mockEnrollmentRepo{items: map[string]*models.Enrollment{
		"en-1": {ID: "en-1", UserID: "u-1"},
		"en-2": {ID: "en-2", UserID: "u-2"},
	}}
	svc := NewGradeService(evaluations, grades, enrollments, enrollments, nil, nil, nil, nil, nil, nil)
	return svc, grades, enrollments
}

func TestRegisterBulkGrades(t *testing.T) {
	svc, grades, _ := gradeFixture()

	result, err := svc.RegisterBulk(context.Background(), RegisterBulkGradesRequest{
		EvaluationID: "ev-1",
		Records: []GradeRecordInput{
			{EnrollmentID: "en-1", Score: 14.5},
			{EnrollmentID: "en-2", Score: 0},
		},
	}, teacherActor)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalProcessed)
	assert.Len(t, grades.upserted, 2)
	assert.Contains(t, result.EvaluationInfo, "Parcial 1")
	assert.Contains(t, result.EvaluationInfo, "10 de junio de 2025")
}

func TestRegisterBulkGradesReusesExistingRow(t *testing.T) {
	svc, grades, _ := gradeFixture()
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	grades.existing = map[string]models.Grade{
		"en-1": {ID: "g-1", EvaluationID: "ev-1", EnrollmentID: "en-1", Score: 11, CreatedAt: created},
	}

	result, err := svc.RegisterBulk(context.Background(), RegisterBulkGradesRequest{
		EvaluationID: "ev-1",
		Records:      []GradeRecordInput{{EnrollmentID: "en-1", Score: 17}},
	}, teacherActor)
	require.NoError(t, err)

	assert.Equal(t, "g-1", result.Grades[0].ID)
	assert.Equal(t, created, result.Grades[0].CreatedAt)
	assert.InDelta(t, 17, result.Grades[0].Score, 0.0001)
}

func TestRegisterBulkGradesRequiresTeacher(t *testing.T) {
	svc, _, _ := gradeFixture()

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkGradesRequest{
		EvaluationID: "ev-1",
		Records:      []GradeRecordInput{{EnrollmentID: "en-1", Score: 12}},
	}, models.Actor{UserID: "u-student", Role: "STUDENT"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestRegisterBulkGradesUnknownEvaluation(t *testing.T) {
	svc, _, _ := gradeFixture()

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkGradesRequest{
		EvaluationID: "no-such",
		Records:      []GradeRecordInput{{EnrollmentID: "en-1", Score: 12}},
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestRegisterBulkGradesUnknownEnrollment(t *testing.T) {
	svc, _, _ := gradeFixture()

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkGradesRequest{
		EvaluationID: "ev-1",
		Records:      []GradeRecordInput{{EnrollmentID: "ghost", Score: 12}},
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestRegisterBulkGradesRejectsOutOfRangeScore(t *testing.T) {
	svc, _, _ := gradeFixture()

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkGradesRequest{
		EvaluationID: "ev-1",
		Records:      []GradeRecordInput{{EnrollmentID: "en-1", Score: 21}},
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestCourseScoresReport(t *testing.T) {
	evaluations := &mockEvaluationRepo{}
	grades := &mockGradeRepo{}
	enrollments := &mockEnrollmentRepo{
		byOff: map[string][]models.Enrollment{
			"off-1": {
				{ID: "en-1", UserID: "u-1", FinalAverage: floatPtr(10)},
				{ID: "en-2", UserID: "u-2", FinalAverage: floatPtr(12)},
				{ID: "en-3", UserID: "u-3", FinalAverage: floatPtr(14)},
			},
		},
		ebRows: []models.EnrollmentBlock{
			{EnrollmentID: "en-1", BlockID: "b-theory", BlockAverage: floatPtr(11)},
			{EnrollmentID: "en-1", BlockID: "b-practice", BlockAverage: floatPtr(9)},
		},
	}
	blocks := &mockBlockRepo{byOff: map[string][]models.Block{
		"off-1": {
			{ID: "b-theory", BlockType: models.BlockTypeTheory},
			{ID: "b-practice", BlockType: models.BlockTypePractice},
		},
	}}
	directory := &mockDirectory{profiles: map[string]*models.UserProfile{
		"u-1": {ID: "u-1", Name: "Ana Quispe"},
		"u-2": {ID: "u-2", Name: "Bruno Díaz"},
	}}
	svc := NewGradeService(evaluations, grades, enrollments, enrollments, blocks, &mockAccessResolver{}, directory, nil, nil, nil)

	report, err := svc.CourseScores(context.Background(), "off-1", teacherActor)
	require.NoError(t, err)

	require.Len(t, report.Students, 3)
	assert.Equal(t, "Ana Quispe", report.Students[0].Name)
	require.NotNil(t, report.Students[0].TheoryScore)
	assert.InDelta(t, 11, *report.Students[0].TheoryScore, 0.0001)
	require.NotNil(t, report.Students[0].PracticeScore)
	assert.InDelta(t, 9, *report.Students[0].PracticeScore, 0.0001)
	// Directory miss leaves the name empty rather than failing the report.
	assert.Empty(t, report.Students[2].Name)

	assert.InDelta(t, 12, report.Meta.AverageCourse, 0.0001)
	assert.InDelta(t, 14, report.Meta.HighScore, 0.0001)
	assert.InDelta(t, 10, report.Meta.LowScore, 0.0001)
	assert.InDelta(t, 1.63, report.Meta.StandardDeviation, 0.0001)
	assert.Equal(t, 2, report.Meta.PassedStudents)
	assert.Equal(t, 1, report.Meta.FailedStudents)
}

func TestCourseScoresWithoutOfferingAccess(t *testing.T) {
	enrollments := &mockEnrollmentRepo{byOff: map[string][]models.Enrollment{
		"off-1": {{ID: "en-1", UserID: "u-1", FinalAverage: floatPtr(15)}},
	}}
	svc := NewGradeService(&mockEvaluationRepo{}, &mockGradeRepo{}, enrollments, enrollments, &mockBlockRepo{}, &mockAccessResolver{deny: true}, nil, nil, nil, nil)

	_, err := svc.CourseScores(context.Background(), "off-1", teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestCourseScoresEmptyRoster(t *testing.T) {
	enrollments := &mockEnrollmentRepo{byOff: map[string][]models.Enrollment{}}
	svc := NewGradeService(&mockEvaluationRepo{}, &mockGradeRepo{}, enrollments, enrollments, &mockBlockRepo{}, &mockAccessResolver{}, nil, nil, nil, nil)

	report, err := svc.CourseScores(context.Background(), "off-empty", teacherActor)
	require.NoError(t, err)

	assert.Empty(t, report.Students)
	assert.Zero(t, report.Meta.AverageCourse)
	assert.Zero(t, report.Meta.PassedStudents)
	assert.Zero(t, report.Meta.FailedStudents)
}

func TestCourseStatisticsBoundary(t *testing.T) {
	svc := NewGradeService(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)

	meta := svc.courseStatistics([]float64{10.5, 10.49})
	assert.Equal(t, 1, meta.PassedStudents)
	assert.Equal(t, 1, meta.FailedStudents)
}
