package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/intisuite/aula-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FetchBySession returns existing attendance rows for a session keyed by
// enrollment ID, restricted to the provided enrollments.
func (r *AttendanceRepository) FetchBySession(ctx context.Context, classSessionID string, enrollmentIDs []string) (map[string]models.Attendance, error) {
	if len(enrollmentIDs) == 0 {
		return map[string]models.Attendance{}, nil
	}
	placeholders := make([]string, len(enrollmentIDs))
	args := make([]interface{}, len(enrollmentIDs)+1)
	args[0] = classSessionID
	for i, id := range enrollmentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args[i+1] = id
	}
	query := fmt.Sprintf(`SELECT id, enrollment_id, class_session_id, attendance_date, status, created_at, updated_at
        FROM attendances WHERE class_session_id = $1 AND enrollment_id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch attendance: %w", err)
	}
	defer rows.Close()

	result := make(map[string]models.Attendance, len(enrollmentIDs))
	for rows.Next() {
		var record models.Attendance
		if err := rows.StructScan(&record); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		result[record.EnrollmentID] = record
	}
	return result, rows.Err()
}

// BulkUpsert writes a whole batch inside one transaction; the batch commits
// fully or not at all. Rows conflict on (enrollment_id, class_session_id).
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) ([]models.Attendance, error) {
	if len(records) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin attendance batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	const query = `INSERT INTO attendances (id, enrollment_id, class_session_id, attendance_date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (enrollment_id, class_session_id)
        DO UPDATE SET status = EXCLUDED.status, attendance_date = EXCLUDED.attendance_date, updated_at = EXCLUDED.updated_at
        RETURNING id, enrollment_id, class_session_id, attendance_date, status, created_at, updated_at`

	now := time.Now().UTC()
	saved := make([]models.Attendance, 0, len(records))
	for i := range records {
		record := records[i]
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		record.UpdatedAt = now

		var stored models.Attendance
		if err := tx.GetContext(ctx, &stored, query, record.ID, record.EnrollmentID, record.ClassSessionID, record.AttendanceDate, record.Status, record.CreatedAt, record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("upsert attendance: %w", err)
		}
		saved = append(saved, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit attendance batch: %w", err)
	}
	committed = true
	return saved, nil
}

// ListByBlock returns the attendance/session/week join for a block,
// optionally narrowed to one enrollment. Week columns come from a LEFT JOIN
// and may be NULL for legacy sessions.
func (r *AttendanceRepository) ListByBlock(ctx context.Context, blockID, enrollmentID string) ([]models.AttendanceWeekRow, error) {
	query := `SELECT a.id AS attendance_id, a.enrollment_id, a.status,
        cs.id AS session_id, cs.session_date, w.id AS week_id, w.number AS week_number, w.name AS week_name
        FROM attendances a
        JOIN class_sessions cs ON cs.id = a.class_session_id
        LEFT JOIN weeks w ON w.id = cs.week_id
        WHERE cs.block_id = $1`
	args := []interface{}{blockID}
	if enrollmentID != "" {
		query += " AND a.enrollment_id = $2"
		args = append(args, enrollmentID)
	}
	query += " ORDER BY cs.session_date"

	var rows []models.AttendanceWeekRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list block attendance: %w", err)
	}
	return rows, nil
}
