package models

import "time"

// ClassSession is one scheduled meeting time for a block. Start and end times
// are wall-clock values (HH:MM:SS) local to the class; no timezone is stored.
type ClassSession struct {
	ID          string    `db:"id" json:"id"`
	BlockID     string    `db:"block_id" json:"block_id"`
	WeekID      *string   `db:"week_id" json:"week_id,omitempty"`
	SessionDate time.Time `db:"session_date" json:"session_date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Week groups class sessions of a block into an academic week.
type Week struct {
	ID        string     `db:"id" json:"id"`
	Number    int        `db:"number" json:"number"`
	Name      string     `db:"name" json:"name"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
}

// SessionWeek pairs one academic week with its scheduled sessions.
type SessionWeek struct {
	Week     Week           `json:"week"`
	Sessions []ClassSession `json:"sessions"`
}

// BlockSessionsReport is the block schedule grouped by academic week.
type BlockSessionsReport struct {
	BlockID       string        `json:"block_id"`
	Weeks         []SessionWeek `json:"weeks"`
	TotalSessions int           `json:"total_sessions"`
}
