package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/richwell/registrar-api/internal/models"
)

// CurriculumRepository loads the static curriculum data the prerequisite
// graph is built from.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository constructs the repository.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// ListSubjectsByProgram returns every subject of a program, inactive ones
// included so historical records still resolve.
func (r *CurriculumRepository) ListSubjectsByProgram(ctx context.Context, programID string) ([]models.Subject, error) {
	const query = `SELECT id, program_id, code, title, units, kind, recommended_year, recommended_term, active, created_at
        FROM subjects WHERE program_id = $1 ORDER BY code`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, programID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListPrerequisiteEdges returns the prerequisite edges between subjects of
// a program.
func (r *CurriculumRepository) ListPrerequisiteEdges(ctx context.Context, programID string) ([]models.PrerequisiteEdge, error) {
	const query = `SELECT p.subject_id, p.required_subject_id
        FROM prerequisites p
        JOIN subjects s ON s.id = p.subject_id
        WHERE s.program_id = $1`
	var edges []models.PrerequisiteEdge
	if err := r.db.SelectContext(ctx, &edges, query, programID); err != nil {
		return nil, fmt.Errorf("list prerequisite edges: %w", err)
	}
	return edges, nil
}

// ListMappingsByProgram returns the (year, term) placements of every
// curriculum version under a program.
func (r *CurriculumRepository) ListMappingsByProgram(ctx context.Context, programID string) ([]models.CurriculumMapping, error) {
	const query = `SELECT m.curriculum_id, m.subject_id, m.year_level, m.term_no, m.is_recommended
        FROM curriculum_mappings m
        JOIN curricula c ON c.id = m.curriculum_id
        WHERE c.program_id = $1
        ORDER BY m.year_level, m.term_no`
	var mappings []models.CurriculumMapping
	if err := r.db.SelectContext(ctx, &mappings, query, programID); err != nil {
		return nil, fmt.Errorf("list curriculum mappings: %w", err)
	}
	return mappings, nil
}
