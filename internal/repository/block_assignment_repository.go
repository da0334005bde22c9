package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/intisuite/aula-api/internal/models"
)

// BlockAssignmentRepository reads teacher-to-block assignments.
type BlockAssignmentRepository struct {
	db *sqlx.DB
}

// NewBlockAssignmentRepository creates a new assignment repository.
func NewBlockAssignmentRepository(db *sqlx.DB) *BlockAssignmentRepository {
	return &BlockAssignmentRepository{db: db}
}

// ListByBlock returns every assignment on one specific block.
func (r *BlockAssignmentRepository) ListByBlock(ctx context.Context, blockID string) ([]models.BlockAssignment, error) {
	const query = `SELECT id, user_id, block_id, course_offering_id, block_role, created_at
        FROM block_assignments WHERE block_id = $1`
	var assignments []models.BlockAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, blockID); err != nil {
		return nil, fmt.Errorf("list block assignments: %w", err)
	}
	return assignments, nil
}

// ListByOffering returns every assignment under a course offering.
func (r *BlockAssignmentRepository) ListByOffering(ctx context.Context, courseOfferingID string) ([]models.BlockAssignment, error) {
	const query = `SELECT id, user_id, block_id, course_offering_id, block_role, created_at
        FROM block_assignments WHERE course_offering_id = $1`
	var assignments []models.BlockAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, courseOfferingID); err != nil {
		return nil, fmt.Errorf("list offering assignments: %w", err)
	}
	return assignments, nil
}
