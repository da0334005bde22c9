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

type mockSessionRepo struct {
	sessions map[string]*models.ClassSession
	byBlock  map[string][]models.ClassSession
	weeks    map[string][]models.Week
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	if session, ok := m.sessions[id]; ok {
		cp := *session
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) ListByBlock(ctx context.Context, blockID string) ([]models.ClassSession, error) {
	return m.byBlock[blockID], nil
}

func (m *mockSessionRepo) ListWeeksByBlock(ctx context.Context, blockID string) ([]models.Week, error) {
	return m.weeks[blockID], nil
}

type mockAttendanceRepo struct {
	existing map[string]models.Attendance
	rows     []models.AttendanceWeekRow
	upserted []models.Attendance
	saveErr  error
}

func (m *mockAttendanceRepo) FetchBySession(ctx context.Context, classSessionID string, enrollmentIDs []string) (map[string]models.Attendance, error) {
	return m.existing, nil
}

func (m *mockAttendanceRepo) BulkUpsert(ctx context.Context, records []models.Attendance) ([]models.Attendance, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.upserted = records
	return records, nil
}

func (m *mockAttendanceRepo) ListByBlock(ctx context.Context, blockID, enrollmentID string) ([]models.AttendanceWeekRow, error) {
	return m.rows, nil
}

type mockAccessResolver struct {
	access *models.BlockAccess
	deny   bool
}

func (m *mockAccessResolver) resolved() *models.BlockAccess {
	if m.deny {
		return &models.BlockAccess{HasPermission: false, AccessType: models.AccessNone, Message: "no está asignado a este bloque ni es responsable de la oferta de curso"}
	}
	if m.access != nil {
		return m.access
	}
	return &models.BlockAccess{HasPermission: true, AccessType: models.AccessOwner}
}

func (m *mockAccessResolver) ResolveBlockAccess(ctx context.Context, userID, role, blockID string) (*models.BlockAccess, error) {
	return m.resolved(), nil
}

func (m *mockAccessResolver) RequireBlockAccess(ctx context.Context, userID, role, blockID string) (*models.BlockAccess, error) {
	access := m.resolved()
	if !access.HasPermission {
		return nil, appErrors.Clone(appErrors.ErrForbidden, access.Message)
	}
	return access, nil
}

func (m *mockAccessResolver) RequireOfferingAccess(ctx context.Context, userID, role, courseOfferingID string) (*models.BlockAccess, error) {
	access := m.resolved()
	if !access.HasPermission {
		return nil, appErrors.Clone(appErrors.ErrForbidden, access.Message)
	}
	return access, nil
}

var teacherActor = models.Actor{UserID: "u-teacher", Role: models.RoleTeacher}

func attendanceFixture(now time.Time) (*AttendanceService, *mockAttendanceRepo) {
	sessions := &mockSessionRepo{sessions: map[string]*models.ClassSession{
		"cs-1": {
			ID:          "cs-1",
			BlockID:     "blk-1",
			SessionDate: time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC),
			StartTime:   "09:00",
			EndTime:     "11:00",
		},
	}}
	records := &mockAttendanceRepo{}
	window := NewTimeWindowCalculator(fixedClock(now), "UTC")
	svc := NewAttendanceService(sessions, records, &mockAccessResolver{}, window, nil, nil, fixedClock(now), nil)
	return svc, records
}

func TestRegisterBulkPersistsBatch(t *testing.T) {
	now := time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC)
	svc, records := attendanceFixture(now)

	result, err := svc.RegisterBulk(context.Background(), RegisterBulkAttendanceRequest{
		ClassSessionID: "cs-1",
		Records: []AttendanceRecordInput{
			{EnrollmentID: "en-1", Status: "PRESENT"},
			{EnrollmentID: "en-2", Status: "absent"},
		},
	}, teacherActor)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalProcessed)
	assert.Len(t, records.upserted, 2)
	assert.Equal(t, models.AttendanceStatusAbsent, records.upserted[1].Status)
	assert.Equal(t, now, records.upserted[0].AttendanceDate)
	assert.Contains(t, result.SessionInfo, "17 de mayo de 2025")
}

func TestRegisterBulkIsIdempotent(t *testing.T) {
	now := time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC)
	svc, records := attendanceFixture(now)
	created := time.Date(2025, 5, 17, 8, 55, 0, 0, time.UTC)
	records.existing = map[string]models.Attendance{
		"en-1": {ID: "att-1", EnrollmentID: "en-1", ClassSessionID: "cs-1", Status: models.AttendanceStatusAbsent, CreatedAt: created},
	}

	result, err := svc.RegisterBulk(context.Background(), RegisterBulkAttendanceRequest{
		ClassSessionID: "cs-1",
		Records:        []AttendanceRecordInput{{EnrollmentID: "en-1", Status: "PRESENT"}},
	}, teacherActor)
	require.NoError(t, err)

	// Re-submission reuses the existing row instead of creating a second one.
	assert.Equal(t, "att-1", result.Attendances[0].ID)
	assert.Equal(t, created, result.Attendances[0].CreatedAt)
	assert.Equal(t, models.AttendanceStatusPresent, result.Attendances[0].Status)
}

func TestRegisterBulkRejectsEmptyBatch(t *testing.T) {
	svc, _ := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkAttendanceRequest{
		ClassSessionID: "cs-1",
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Contains(t, err.Error(), "al menos un registro")
}

func TestRegisterBulkRejectsDuplicateEnrollment(t *testing.T) {
	svc, _ := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkAttendanceRequest{
		ClassSessionID: "cs-1",
		Records: []AttendanceRecordInput{
			{EnrollmentID: "en-1", Status: "PRESENT"},
			{EnrollmentID: "en-1", Status: "LATE"},
		},
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestRegisterBulkRejectsUnknownStatus(t *testing.T) {
	svc, _ := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkAttendanceRequest{
		ClassSessionID: "cs-1",
		Records:        []AttendanceRecordInput{{EnrollmentID: "en-1", Status: "SLEEPING"}},
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestRegisterBulkOutsideWindow(t *testing.T) {
	svc, records := attendanceFixture(time.Date(2025, 5, 18, 0, 0, 1, 0, time.UTC))

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkAttendanceRequest{
		ClassSessionID: "cs-1",
		Records:        []AttendanceRecordInput{{EnrollmentID: "en-1", Status: "PRESENT"}},
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Empty(t, records.upserted)
}

func TestRegisterBulkUnknownSession(t *testing.T) {
	svc, _ := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkAttendanceRequest{
		ClassSessionID: "no-such",
		Records:        []AttendanceRecordInput{{EnrollmentID: "en-1", Status: "PRESENT"}},
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestRegisterBulkWithoutPermission(t *testing.T) {
	now := time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC)
	sessions := &mockSessionRepo{sessions: map[string]*models.ClassSession{
		"cs-1": {ID: "cs-1", BlockID: "blk-1", SessionDate: time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "11:00"},
	}}
	window := NewTimeWindowCalculator(fixedClock(now), "UTC")
	svc := NewAttendanceService(sessions, &mockAttendanceRepo{}, &mockAccessResolver{deny: true}, window, nil, nil, fixedClock(now), nil)

	_, err := svc.RegisterBulk(context.Background(), RegisterBulkAttendanceRequest{
		ClassSessionID: "cs-1",
		Records:        []AttendanceRecordInput{{EnrollmentID: "en-1", Status: "PRESENT"}},
	}, teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func weekRow(id, enrollment string, status models.AttendanceStatus, weekID string, weekNumber int, day int) models.AttendanceWeekRow {
	date := time.Date(2025, 5, day, 0, 0, 0, 0, time.UTC)
	name := "Semana " + weekID
	return models.AttendanceWeekRow{
		AttendanceID: id,
		EnrollmentID: enrollment,
		Status:       status,
		SessionID:    "cs-" + id,
		SessionDate:  &date,
		WeekID:       &weekID,
		WeekNumber:   &weekNumber,
		WeekName:     &name,
	}
}

func TestFindByBlockGroupsByWeekDescending(t *testing.T) {
	svc, records := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))
	records.rows = []models.AttendanceWeekRow{
		weekRow("a1", "en-1", models.AttendanceStatusPresent, "w1", 1, 5),
		weekRow("a2", "en-1", models.AttendanceStatusLate, "w2", 2, 12),
		weekRow("a3", "en-1", models.AttendanceStatusAbsent, "w2", 2, 14),
	}

	report, err := svc.FindByBlock(context.Background(), "blk-1", "en-1", teacherActor)
	require.NoError(t, err)

	require.Len(t, report.Weeks, 2)
	assert.Equal(t, 2, report.Weeks[0].WeekNumber)
	assert.Equal(t, 1, report.Weeks[1].WeekNumber)
	assert.Len(t, report.Weeks[0].Attendances, 2)
	assert.Equal(t, "5 de mayo de 2025", report.Weeks[1].Attendances[0].FormattedDate)
}

func TestFindByBlockPercentageCountsPresentAndLate(t *testing.T) {
	svc, records := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))
	records.rows = []models.AttendanceWeekRow{
		weekRow("a1", "en-1", models.AttendanceStatusPresent, "w1", 1, 5),
		weekRow("a2", "en-1", models.AttendanceStatusLate, "w1", 1, 7),
		weekRow("a3", "en-1", models.AttendanceStatusJustified, "w1", 1, 9),
	}

	report, err := svc.FindByBlock(context.Background(), "blk-1", "en-1", teacherActor)
	require.NoError(t, err)
	assert.Equal(t, "67%", report.AttendancePercentage)
}

func TestFindByBlockSkipsMalformedRows(t *testing.T) {
	svc, records := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))
	orphan := weekRow("a2", "en-1", models.AttendanceStatusAbsent, "w1", 1, 7)
	orphan.WeekID = nil
	orphan.WeekNumber = nil
	records.rows = []models.AttendanceWeekRow{
		weekRow("a1", "en-1", models.AttendanceStatusPresent, "w1", 1, 5),
		orphan,
	}

	report, err := svc.FindByBlock(context.Background(), "blk-1", "en-1", teacherActor)
	require.NoError(t, err)

	// The malformed row is invisible in the weeks but still counted in
	// the percentage denominator.
	require.Len(t, report.Weeks, 1)
	assert.Len(t, report.Weeks[0].Attendances, 1)
	assert.Equal(t, "50%", report.AttendancePercentage)
}

func TestFindByBlockEmptyBlock(t *testing.T) {
	svc, _ := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))

	report, err := svc.FindByBlock(context.Background(), "blk-1", "", teacherActor)
	require.NoError(t, err)
	assert.Equal(t, "0%", report.AttendancePercentage)
	assert.Empty(t, report.Weeks)
}

func TestSessionWindowUnknownSession(t *testing.T) {
	svc, _ := attendanceFixture(time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC))

	_, err := svc.SessionWindow(context.Background(), "no-such", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func blockSession(id, weekID string, day int) models.ClassSession {
	session := models.ClassSession{
		ID:          id,
		BlockID:     "blk-1",
		SessionDate: time.Date(2025, 5, day, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "11:00",
	}
	if weekID != "" {
		session.WeekID = &weekID
	}
	return session
}

func TestBlockSessionsGroupsByWeek(t *testing.T) {
	now := time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC)
	sessions := &mockSessionRepo{
		byBlock: map[string][]models.ClassSession{
			"blk-1": {
				blockSession("cs-1", "w1", 5),
				blockSession("cs-2", "w2", 12),
				blockSession("cs-3", "w2", 14),
			},
		},
		weeks: map[string][]models.Week{
			"blk-1": {
				{ID: "w1", Number: 1, Name: "Semana 1"},
				{ID: "w2", Number: 2, Name: "Semana 2"},
			},
		},
	}
	window := NewTimeWindowCalculator(fixedClock(now), "UTC")
	svc := NewAttendanceService(sessions, &mockAttendanceRepo{}, &mockAccessResolver{}, window, nil, nil, fixedClock(now), nil)

	report, err := svc.BlockSessions(context.Background(), "blk-1", teacherActor)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalSessions)
	require.Len(t, report.Weeks, 2)
	assert.Equal(t, 1, report.Weeks[0].Week.Number)
	assert.Len(t, report.Weeks[0].Sessions, 1)
	assert.Len(t, report.Weeks[1].Sessions, 2)
	assert.Equal(t, "cs-2", report.Weeks[1].Sessions[0].ID)
}

func TestBlockSessionsCountsUnassignedSessions(t *testing.T) {
	now := time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC)
	sessions := &mockSessionRepo{
		byBlock: map[string][]models.ClassSession{
			"blk-1": {
				blockSession("cs-1", "w1", 5),
				blockSession("cs-2", "", 12),
			},
		},
		weeks: map[string][]models.Week{
			"blk-1": {{ID: "w1", Number: 1, Name: "Semana 1"}},
		},
	}
	window := NewTimeWindowCalculator(fixedClock(now), "UTC")
	svc := NewAttendanceService(sessions, &mockAttendanceRepo{}, &mockAccessResolver{}, window, nil, nil, fixedClock(now), nil)

	report, err := svc.BlockSessions(context.Background(), "blk-1", teacherActor)
	require.NoError(t, err)

	// The weekless session stays out of the grouping but is not lost
	// from the total.
	assert.Equal(t, 2, report.TotalSessions)
	require.Len(t, report.Weeks, 1)
	assert.Len(t, report.Weeks[0].Sessions, 1)
}

func TestBlockSessionsWithoutPermission(t *testing.T) {
	now := time.Date(2025, 5, 17, 9, 5, 0, 0, time.UTC)
	window := NewTimeWindowCalculator(fixedClock(now), "UTC")
	svc := NewAttendanceService(&mockSessionRepo{}, &mockAttendanceRepo{}, &mockAccessResolver{deny: true}, window, nil, nil, fixedClock(now), nil)

	_, err := svc.BlockSessions(context.Background(), "blk-1", teacherActor)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}
