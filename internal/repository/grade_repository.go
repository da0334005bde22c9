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

// GradeRepository handles grade persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FetchByEvaluation returns existing grades for an evaluation keyed by
// enrollment ID, restricted to the provided enrollments.
func (r *GradeRepository) FetchByEvaluation(ctx context.Context, evaluationID string, enrollmentIDs []string) (map[string]models.Grade, error) {
	if len(enrollmentIDs) == 0 {
		return map[string]models.Grade{}, nil
	}
	placeholders := make([]string, len(enrollmentIDs))
	args := make([]interface{}, len(enrollmentIDs)+1)
	args[0] = evaluationID
	for i, id := range enrollmentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args[i+1] = id
	}
	query := fmt.Sprintf(`SELECT id, evaluation_id, enrollment_id, score, created_at, updated_at
        FROM grades WHERE evaluation_id = $1 AND enrollment_id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch grades: %w", err)
	}
	defer rows.Close()

	result := make(map[string]models.Grade, len(enrollmentIDs))
	for rows.Next() {
		var grade models.Grade
		if err := rows.StructScan(&grade); err != nil {
			return nil, fmt.Errorf("scan grade: %w", err)
		}
		result[grade.EnrollmentID] = grade
	}
	return result, rows.Err()
}

// FetchByEnrollmentForBlock returns one enrollment's grades across a block's
// evaluations.
func (r *GradeRepository) FetchByEnrollmentForBlock(ctx context.Context, enrollmentID, blockID string) ([]models.Grade, error) {
	const query = `SELECT g.id, g.evaluation_id, g.enrollment_id, g.score, g.created_at, g.updated_at
        FROM grades g
        JOIN evaluations e ON e.id = g.evaluation_id
        WHERE g.enrollment_id = $1 AND e.block_id = $2`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, enrollmentID, blockID); err != nil {
		return nil, fmt.Errorf("fetch enrollment grades: %w", err)
	}
	return grades, nil
}

// BulkUpsert writes a grade batch inside one transaction, conflicting on
// (evaluation_id, enrollment_id).
func (r *GradeRepository) BulkUpsert(ctx context.Context, grades []models.Grade) ([]models.Grade, error) {
	if len(grades) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin grade batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	const query = `INSERT INTO grades (id, evaluation_id, enrollment_id, score, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (evaluation_id, enrollment_id)
        DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
        RETURNING id, evaluation_id, enrollment_id, score, created_at, updated_at`

	now := time.Now().UTC()
	saved := make([]models.Grade, 0, len(grades))
	for i := range grades {
		grade := grades[i]
		if grade.ID == "" {
			grade.ID = uuid.NewString()
		}
		if grade.CreatedAt.IsZero() {
			grade.CreatedAt = now
		}
		grade.UpdatedAt = now

		var stored models.Grade
		if err := tx.GetContext(ctx, &stored, query, grade.ID, grade.EvaluationID, grade.EnrollmentID, grade.Score, grade.CreatedAt, grade.UpdatedAt); err != nil {
			return nil, fmt.Errorf("upsert grade: %w", err)
		}
		saved = append(saved, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit grade batch: %w", err)
	}
	committed = true
	return saved, nil
}
