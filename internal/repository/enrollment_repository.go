package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/intisuite/aula-api/internal/models"
)

// EnrollmentRepository reads enrollments and block placements.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by primary key.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, user_id, course_offering_id, enrollment_date, final_average, created_at, updated_at
        FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByOffering returns every enrollment of a course offering.
func (r *EnrollmentRepository) ListByOffering(ctx context.Context, courseOfferingID string) ([]models.Enrollment, error) {
	const query = `SELECT id, user_id, course_offering_id, enrollment_date, final_average, created_at, updated_at
        FROM enrollments WHERE course_offering_id = $1 ORDER BY enrollment_date`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, courseOfferingID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByBlock returns the roster rows of one block.
func (r *EnrollmentRepository) ListByBlock(ctx context.Context, blockID string) ([]models.BlockEnrollmentRow, error) {
	const query = `SELECT e.id AS enrollment_id, e.user_id, e.enrollment_date, eb.block_average
        FROM enrollment_blocks eb
        JOIN enrollments e ON e.id = eb.enrollment_id
        WHERE eb.block_id = $1
        ORDER BY e.enrollment_date`
	var rows []models.BlockEnrollmentRow
	if err := r.db.SelectContext(ctx, &rows, query, blockID); err != nil {
		return nil, fmt.Errorf("list block roster: %w", err)
	}
	return rows, nil
}

// ListEnrollmentBlocks returns block placements for a set of enrollments.
func (r *EnrollmentRepository) ListEnrollmentBlocks(ctx context.Context, enrollmentIDs []string) ([]models.EnrollmentBlock, error) {
	if len(enrollmentIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(enrollmentIDs))
	args := make([]interface{}, len(enrollmentIDs))
	for i, id := range enrollmentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT enrollment_id, block_id, block_average
        FROM enrollment_blocks WHERE enrollment_id IN (%s)`, strings.Join(placeholders, ","))

	var rows []models.EnrollmentBlock
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollment blocks: %w", err)
	}
	return rows, nil
}
