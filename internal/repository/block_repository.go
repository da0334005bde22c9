package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/intisuite/aula-api/internal/models"
)

// BlockRepository reads theory/practice blocks.
type BlockRepository struct {
	db *sqlx.DB
}

// NewBlockRepository creates a new block repository.
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// FindByID returns a block by primary key.
func (r *BlockRepository) FindByID(ctx context.Context, id string) (*models.Block, error) {
	const query = `SELECT id, course_offering_id, name, block_type, created_at, updated_at
        FROM blocks WHERE id = $1`
	var block models.Block
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// ListByOffering returns every block under a course offering.
func (r *BlockRepository) ListByOffering(ctx context.Context, courseOfferingID string) ([]models.Block, error) {
	const query = `SELECT id, course_offering_id, name, block_type, created_at, updated_at
        FROM blocks WHERE course_offering_id = $1 ORDER BY block_type, name`
	var blocks []models.Block
	if err := r.db.SelectContext(ctx, &blocks, query, courseOfferingID); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}
