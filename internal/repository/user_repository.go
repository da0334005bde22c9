package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/intisuite/aula-api/internal/models"
)

// UserRepository reads the local mirror of the identity provider's user
// directory. Profile mutations happen upstream; this side is read-only.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindOne returns the display profile for a user.
func (r *UserRepository) FindOne(ctx context.Context, userID string) (*models.UserProfile, error) {
	const query = `SELECT id, name, COALESCE(img_url, '') AS img_url, COALESCE(resume_url, '') AS resume_url
        FROM users WHERE id = $1`
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}
