package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/intisuite/aula-api/internal/models"
)

// EvaluationRepository reads weighted evaluations.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// FindByID returns an evaluation by primary key.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	const query = `SELECT id, block_id, title, evaluation_date, weight, created_at, updated_at
        FROM evaluations WHERE id = $1`
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, query, id); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// ListByBlock returns a block's evaluations ordered by date.
func (r *EvaluationRepository) ListByBlock(ctx context.Context, blockID string) ([]models.Evaluation, error) {
	const query = `SELECT id, block_id, title, evaluation_date, weight, created_at, updated_at
        FROM evaluations WHERE block_id = $1 ORDER BY evaluation_date`
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, blockID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}
