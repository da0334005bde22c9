package models

import "time"

// Evaluation is a weighted gradable event within a block. Weight is a
// percentage (0-100); weights in a block are not required to sum to 100.
type Evaluation struct {
	ID             string    `db:"id" json:"id"`
	BlockID        string    `db:"block_id" json:"block_id"`
	Title          string    `db:"title" json:"title"`
	EvaluationDate time.Time `db:"evaluation_date" json:"evaluation_date"`
	Weight         float64   `db:"weight" json:"weight"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Grade is one student's score (0-20 scale) for one evaluation.
// At most one row exists per (evaluation_id, enrollment_id).
type Grade struct {
	ID           string    `db:"id" json:"id"`
	EvaluationID string    `db:"evaluation_id" json:"evaluation_id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Score        float64   `db:"score" json:"score"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// EvaluationGrade pairs an evaluation with a student's score, nil when ungraded.
type EvaluationGrade struct {
	EvaluationID   string    `json:"evaluation_id"`
	Title          string    `json:"title"`
	EvaluationDate time.Time `json:"evaluation_date"`
	Weight         float64   `json:"weight"`
	Score          *float64  `json:"score,omitempty"`
}

// StudentBlockGrades is the per-student grade view for one block.
type StudentBlockGrades struct {
	EnrollmentID string            `json:"enrollment_id"`
	BlockID      string            `json:"block_id"`
	Evaluations  []EvaluationGrade `json:"evaluations"`
	Average      float64           `json:"average"`
}

// StudentScore is one row of the course-wide score report.
type StudentScore struct {
	UserID        string   `json:"user_id"`
	Name          string   `json:"nombre"`
	TheoryScore   *float64 `json:"theory_score,omitempty"`
	PracticeScore *float64 `json:"practice_score,omitempty"`
	FinalScore    float64  `json:"final_score"`
}

// CourseScoreMeta aggregates course-wide statistics over final scores.
type CourseScoreMeta struct {
	AverageCourse     float64 `json:"average_course"`
	HighScore         float64 `json:"high_score"`
	LowScore          float64 `json:"low_score"`
	StandardDeviation float64 `json:"standard_deviation"`
	PassedStudents    int     `json:"passed_students"`
	FailedStudents    int     `json:"failed_students"`
}

// CourseScoresReport is the full course score view.
type CourseScoresReport struct {
	Students []StudentScore  `json:"students"`
	Meta     CourseScoreMeta `json:"meta"`
}
