package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/richwell/registrar-api/internal/models"
)

// TermRepository handles persistence for academic terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository constructs the repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// FindByID loads a term by identifier.
func (r *TermRepository) FindByID(ctx context.Context, id string) (*models.Term, error) {
	const query = `SELECT id, name, level, start_date, end_date, add_drop_deadline, grade_encoding_deadline, is_active, created_at
        FROM terms WHERE id = $1`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, id); err != nil {
		return nil, err
	}
	return &term, nil
}

// FindActiveByLevel returns the active term for a program level. A unique
// partial index guarantees at most one row.
func (r *TermRepository) FindActiveByLevel(ctx context.Context, level string) (*models.Term, error) {
	const query = `SELECT id, name, level, start_date, end_date, add_drop_deadline, grade_encoding_deadline, is_active, created_at
        FROM terms WHERE level = $1 AND is_active = TRUE LIMIT 1`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, level); err != nil {
		return nil, err
	}
	return &term, nil
}
