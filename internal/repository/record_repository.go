package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/richwell/registrar-api/internal/models"
)

// RecordRepository handles persistence for academic records.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ListByStudent returns the full academic history of a student, oldest
// attempt first.
func (r *RecordRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecord, error) {
	const query = `SELECT id, student_id, subject_id, term_id, section_id, status, grade, posted_at, created_at
        FROM academic_records WHERE student_id = $1 ORDER BY created_at`
	var records []models.AcademicRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list academic records: %w", err)
	}
	return records, nil
}

// ListIncomplete returns every record still in inc status together with the
// subject kind the sweep needs to pick the expiry window.
func (r *RecordRepository) ListIncomplete(ctx context.Context) ([]models.IncompleteDetail, error) {
	const query = `SELECT ar.id, ar.student_id, ar.subject_id, ar.term_id, ar.section_id, ar.status, ar.grade, ar.posted_at, ar.created_at,
        s.code AS subject_code, s.kind AS subject_kind
        FROM academic_records ar
        JOIN subjects s ON s.id = ar.subject_id
        WHERE ar.status = $1
        ORDER BY ar.created_at`
	var records []models.IncompleteDetail
	if err := r.db.SelectContext(ctx, &records, query, models.RecordStatusInc); err != nil {
		return nil, fmt.Errorf("list incomplete records: %w", err)
	}
	return records, nil
}

// Transition moves a record from one status to another with a guarded
// update. It reports false when the record was no longer in the expected
// status, which makes retries and concurrent grade postings harmless.
func (r *RecordRepository) Transition(ctx context.Context, id string, from, to models.RecordStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("transition %s -> %s not permitted", from, to)
	}
	const query = `UPDATE academic_records SET status = $3 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("transition record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition record rows: %w", err)
	}
	return affected == 1, nil
}
