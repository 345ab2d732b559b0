package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/richwell/registrar-api/internal/models"
)

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID loads a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, program_id, curriculum_id, status, created_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindDetailByID loads a student with the program context the eligibility
// paths need. A missing curriculum assignment comes back as an empty
// curriculum_id, not an error.
func (r *StudentRepository) FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.program_id, COALESCE(s.curriculum_id, '') AS curriculum_id, s.status, s.created_at,
        p.level AS program_level, p.passing_grade AS program_passing_grade
        FROM students s
        JOIN programs p ON p.id = s.program_id
        WHERE s.id = $1`
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}
