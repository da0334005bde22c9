package models

import "time"

// Enrollment is a student's registration into a course offering. FinalAverage
// is computed once the course closes and stays nil until then.
type Enrollment struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	CourseOfferingID string    `db:"course_offering_id" json:"course_offering_id"`
	EnrollmentDate   time.Time `db:"enrollment_date" json:"enrollment_date"`
	FinalAverage     *float64  `db:"final_average" json:"final_average,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// EnrollmentBlock places an enrollment into one specific block and carries the
// block-scoped average. Keyed by (enrollment_id, block_id).
type EnrollmentBlock struct {
	EnrollmentID string   `db:"enrollment_id" json:"enrollment_id"`
	BlockID      string   `db:"block_id" json:"block_id"`
	BlockAverage *float64 `db:"block_average" json:"block_average,omitempty"`
}

// BlockEnrollmentRow is the joined roster row for a block.
type BlockEnrollmentRow struct {
	EnrollmentID   string    `db:"enrollment_id" json:"enrollment_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
	BlockAverage   *float64  `db:"block_average" json:"block_average,omitempty"`
}

// BlockStudent is a roster entry enriched with directory data.
type BlockStudent struct {
	EnrollmentID   string    `json:"enrollment_id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	ImgURL         string    `json:"img_url,omitempty"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	BlockAverage   *float64  `json:"block_average,omitempty"`
}
