package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/intisuite/aula-api/internal/models"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
)

type classSessionReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
	ListByBlock(ctx context.Context, blockID string) ([]models.ClassSession, error)
	ListWeeksByBlock(ctx context.Context, blockID string) ([]models.Week, error)
}

type attendanceRepository interface {
	FetchBySession(ctx context.Context, classSessionID string, enrollmentIDs []string) (map[string]models.Attendance, error)
	BulkUpsert(ctx context.Context, records []models.Attendance) ([]models.Attendance, error)
	ListByBlock(ctx context.Context, blockID, enrollmentID string) ([]models.AttendanceWeekRow, error)
}

type blockAccessResolver interface {
	RequireBlockAccess(ctx context.Context, userID, role, blockID string) (*models.BlockAccess, error)
	ResolveBlockAccess(ctx context.Context, userID, role, blockID string) (*models.BlockAccess, error)
}

// AttendanceRecordInput is a single entry of a bulk registration.
type AttendanceRecordInput struct {
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	Status       string `json:"status" validate:"required,attendance_status"`
}

// RegisterBulkAttendanceRequest is the bulk registration payload.
type RegisterBulkAttendanceRequest struct {
	ClassSessionID string                  `json:"class_session_id" validate:"required"`
	Records        []AttendanceRecordInput `json:"records" validate:"dive"`
	Timezone       string                  `json:"timezone"`
}

// BulkAttendanceResult summarises a bulk registration.
type BulkAttendanceResult struct {
	Attendances    []models.Attendance `json:"attendances"`
	TotalProcessed int                 `json:"total_processed"`
	SessionInfo    string              `json:"session_info"`
}

// AttendanceService coordinates attendance registration and reporting.
type AttendanceService struct {
	sessions  classSessionReader
	records   attendanceRepository
	access    blockAccessResolver
	window    *TimeWindowCalculator
	cache     *CacheService
	validator *validator.Validate
	clock     Clock
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(sessions classSessionReader, records attendanceRepository, access blockAccessResolver, window *TimeWindowCalculator, cache *CacheService, validate *validator.Validate, clock Clock, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		sessions:  sessions,
		records:   records,
		access:    access,
		window:    window,
		cache:     cache,
		validator: validate,
		clock:     clock,
		logger:    logger,
	}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		status := models.AttendanceStatus(strings.ToUpper(fl.Field().String()))
		return status.Valid()
	})
	return svc
}

// RegisterBulk upserts attendance for a whole class session. The batch is
// all-or-nothing: any persistence failure rolls everything back.
func (s *AttendanceService) RegisterBulk(ctx context.Context, req RegisterBulkAttendanceRequest, actor models.Actor) (*BulkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "registro de asistencia inválido")
	}

	session, err := s.sessions.FindByID(ctx, req.ClassSessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sesión de clase no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class session")
	}

	if err := s.window.Validate(session, req.Timezone); err != nil {
		return nil, err
	}

	if _, err := s.access.RequireBlockAccess(ctx, actor.UserID, actor.Role, session.BlockID); err != nil {
		return nil, err
	}

	if len(req.Records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "debe enviar al menos un registro de asistencia")
	}

	enrollmentIDs := make([]string, 0, len(req.Records))
	seen := make(map[string]struct{}, len(req.Records))
	for _, record := range req.Records {
		if _, dup := seen[record.EnrollmentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("matrícula %s duplicada en el lote", record.EnrollmentID))
		}
		seen[record.EnrollmentID] = struct{}{}
		enrollmentIDs = append(enrollmentIDs, record.EnrollmentID)
	}

	// One query for the whole batch; reusing existing row IDs makes the
	// operation idempotent on (enrollment_id, class_session_id).
	existing, err := s.records.FetchBySession(ctx, session.ID, enrollmentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch existing attendance")
	}

	now := s.clock().UTC()
	records := make([]models.Attendance, len(req.Records))
	for i, input := range req.Records {
		record := models.Attendance{
			EnrollmentID:   input.EnrollmentID,
			ClassSessionID: session.ID,
			AttendanceDate: now,
			Status:         models.AttendanceStatus(strings.ToUpper(input.Status)),
		}
		if prev, ok := existing[input.EnrollmentID]; ok {
			record.ID = prev.ID
			record.CreatedAt = prev.CreatedAt
		}
		records[i] = record
	}

	saved, err := s.records.BulkUpsert(ctx, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance batch")
	}

	s.cache.Invalidate(ctx, fmt.Sprintf("reports:attendance:block:%s:*", session.BlockID))

	return &BulkAttendanceResult{
		Attendances:    saved,
		TotalProcessed: len(saved),
		SessionInfo:    sessionLabel(session),
	}, nil
}

// FindByBlock returns attendance for a block grouped by academic week, most
// recent week first, optionally narrowed to one enrollment. Malformed rows
// are skipped so a single bad record never sinks the report.
func (s *AttendanceService) FindByBlock(ctx context.Context, blockID, enrollmentID string, actor models.Actor) (*models.BlockAttendanceReport, error) {
	if _, err := s.access.RequireBlockAccess(ctx, actor.UserID, actor.Role, blockID); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("reports:attendance:block:%s:%s", blockID, enrollmentID)
	var cached models.BlockAttendanceReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	rows, err := s.records.ListByBlock(ctx, blockID, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}

	report := s.buildWeeklyReport(rows)
	s.cache.Set(ctx, cacheKey, report)
	return report, nil
}

func (s *AttendanceService) buildWeeklyReport(rows []models.AttendanceWeekRow) *models.BlockAttendanceReport {
	total := 0
	counted := 0
	weeks := make(map[string]*models.AttendanceWeek)

	for _, row := range rows {
		total++
		if row.Status.Counted() {
			counted++
		}
		if row.WeekID == nil || row.WeekNumber == nil || row.SessionDate == nil {
			s.logger.Warn("skipping malformed attendance row",
				zap.String("attendance_id", row.AttendanceID),
				zap.String("session_id", row.SessionID))
			continue
		}
		week, ok := weeks[*row.WeekID]
		if !ok {
			name := ""
			if row.WeekName != nil {
				name = *row.WeekName
			}
			week = &models.AttendanceWeek{WeekID: *row.WeekID, WeekName: name, WeekNumber: *row.WeekNumber}
			weeks[*row.WeekID] = week
		}
		week.Attendances = append(week.Attendances, models.AttendanceEntry{
			Date:          *row.SessionDate,
			FormattedDate: formatDateES(*row.SessionDate),
			Status:        row.Status,
		})
	}

	report := &models.BlockAttendanceReport{Weeks: make([]models.AttendanceWeek, 0, len(weeks))}
	for _, week := range weeks {
		report.Weeks = append(report.Weeks, *week)
	}
	sort.Slice(report.Weeks, func(i, j int) bool {
		return report.Weeks[i].WeekNumber > report.Weeks[j].WeekNumber
	})

	percentage := 0
	if total > 0 {
		percentage = int(math.Round(100 * float64(counted) / float64(total)))
	}
	report.AttendancePercentage = fmt.Sprintf("%d%%", percentage)
	return report
}

// BlockSessions returns a block's schedule grouped by academic week, earliest
// week first. Sessions not yet attached to a week are counted in the total
// but left out of the weekly grouping.
func (s *AttendanceService) BlockSessions(ctx context.Context, blockID string, actor models.Actor) (*models.BlockSessionsReport, error) {
	if _, err := s.access.RequireBlockAccess(ctx, actor.UserID, actor.Role, blockID); err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListByBlock(ctx, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class sessions")
	}
	weeks, err := s.sessions.ListWeeksByBlock(ctx, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weeks")
	}

	sessionsByWeek := make(map[string][]models.ClassSession, len(weeks))
	for _, session := range sessions {
		if session.WeekID == nil {
			s.logger.Warn("class session without week",
				zap.String("session_id", session.ID),
				zap.String("block_id", blockID))
			continue
		}
		sessionsByWeek[*session.WeekID] = append(sessionsByWeek[*session.WeekID], session)
	}

	report := &models.BlockSessionsReport{
		BlockID:       blockID,
		Weeks:         make([]models.SessionWeek, 0, len(weeks)),
		TotalSessions: len(sessions),
	}
	for _, week := range weeks {
		report.Weeks = append(report.Weeks, models.SessionWeek{
			Week:     week,
			Sessions: sessionsByWeek[week.ID],
		})
	}
	return report, nil
}

// SessionWindow exposes the registration window for a session, for clients
// that render the status banner before submitting.
func (s *AttendanceService) SessionWindow(ctx context.Context, classSessionID, timezone string) (*TimeWindow, error) {
	session, err := s.sessions.FindByID(ctx, classSessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sesión de clase no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class session")
	}
	return s.window.Window(session, timezone)
}

func sessionLabel(session *models.ClassSession) string {
	start := strings.TrimSuffix(session.StartTime, ":00")
	end := strings.TrimSuffix(session.EndTime, ":00")
	return fmt.Sprintf("Clase del %s, %s - %s", formatDateES(session.SessionDate), start, end)
}
