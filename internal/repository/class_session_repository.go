package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/intisuite/aula-api/internal/models"
)

// ClassSessionRepository reads scheduled class sessions.
type ClassSessionRepository struct {
	db *sqlx.DB
}

// NewClassSessionRepository creates a new class session repository.
func NewClassSessionRepository(db *sqlx.DB) *ClassSessionRepository {
	return &ClassSessionRepository{db: db}
}

// FindByID returns a class session by primary key.
func (r *ClassSessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	const query = `SELECT id, block_id, week_id, session_date, start_time, end_time, created_at, updated_at
        FROM class_sessions WHERE id = $1`
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByBlock returns the sessions of a block ordered by date.
func (r *ClassSessionRepository) ListByBlock(ctx context.Context, blockID string) ([]models.ClassSession, error) {
	const query = `SELECT id, block_id, week_id, session_date, start_time, end_time, created_at, updated_at
        FROM class_sessions WHERE block_id = $1 ORDER BY session_date`
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, blockID); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	return sessions, nil
}

// ListWeeksByBlock returns the academic weeks referenced by a block's
// sessions, ordered by week number.
func (r *ClassSessionRepository) ListWeeksByBlock(ctx context.Context, blockID string) ([]models.Week, error) {
	const query = `SELECT DISTINCT w.id, w.number, w.name, w.start_date
        FROM weeks w
        INNER JOIN class_sessions cs ON cs.week_id = w.id
        WHERE cs.block_id = $1 ORDER BY w.number`
	var weeks []models.Week
	if err := r.db.SelectContext(ctx, &weeks, query, blockID); err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	return weeks, nil
}
