package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent   AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent    AttendanceStatus = "ABSENT"
	AttendanceStatusLate      AttendanceStatus = "LATE"
	AttendanceStatusJustified AttendanceStatus = "JUSTIFIED"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusJustified:
		return true
	default:
		return false
	}
}

// Counted reports whether the status counts toward the attendance percentage.
func (s AttendanceStatus) Counted() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// Attendance is one student's attendance record for one class session.
// At most one row exists per (enrollment_id, class_session_id).
type Attendance struct {
	ID             string           `db:"id" json:"id"`
	EnrollmentID   string           `db:"enrollment_id" json:"enrollment_id"`
	ClassSessionID string           `db:"class_session_id" json:"class_session_id"`
	AttendanceDate time.Time        `db:"attendance_date" json:"attendance_date"`
	Status         AttendanceStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceWeekRow is the attendance/session/week join used by the weekly
// report. Week columns are nullable because legacy sessions may lack a week.
type AttendanceWeekRow struct {
	AttendanceID string           `db:"attendance_id"`
	EnrollmentID string           `db:"enrollment_id"`
	Status       AttendanceStatus `db:"status"`
	SessionID    string           `db:"session_id"`
	SessionDate  *time.Time       `db:"session_date"`
	WeekID       *string          `db:"week_id"`
	WeekNumber   *int             `db:"week_number"`
	WeekName     *string          `db:"week_name"`
}

// AttendanceEntry is one dated record inside a report week.
type AttendanceEntry struct {
	Date          time.Time        `json:"date"`
	FormattedDate string           `json:"formatted_date"`
	Status        AttendanceStatus `json:"status"`
}

// AttendanceWeek groups report entries under their academic week.
type AttendanceWeek struct {
	WeekID      string            `json:"week_id"`
	WeekName    string            `json:"week_name"`
	WeekNumber  int               `json:"week_number"`
	Attendances []AttendanceEntry `json:"attendances"`
}

// BlockAttendanceReport is the week-grouped attendance view for a block.
type BlockAttendanceReport struct {
	AttendancePercentage string           `json:"attendance_percentage"`
	Weeks                []AttendanceWeek `json:"weeks"`
}
