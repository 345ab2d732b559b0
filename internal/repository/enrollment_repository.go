package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/richwell/registrar-api/internal/models"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
)

// EnrollmentRepository commits validated enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

type sectionRow struct {
	ID        string               `db:"id"`
	SubjectID string               `db:"subject_id"`
	TermID    string               `db:"term_id"`
	Capacity  int                  `db:"capacity"`
	Occupancy int                  `db:"occupancy"`
	Status    models.SectionStatus `db:"status"`
}

// CommitEnrollment creates one enrolled record per selection and reserves a
// seat in each chosen section, all inside a single transaction. Sections are
// locked row by row; a section that is closed, full, or mismatched rolls the
// whole batch back. The unique index on (student_id, subject_id, term_id)
// is the last line of defence against concurrent duplicate enrollments.
func (r *EnrollmentRepository) CommitEnrollment(ctx context.Context, studentID, termID string, selections []models.SubjectSelection) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enrollment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	recordIDs := make([]string, 0, len(selections))
	for _, sel := range selections {
		var section sectionRow
		err = tx.GetContext(ctx, &section,
			`SELECT id, subject_id, term_id, capacity, occupancy, status FROM sections WHERE id = $1 FOR UPDATE`,
			sel.SectionID)
		if err != nil {
			if err == sql.ErrNoRows {
				err = appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("section %s not found", sel.SectionID))
				return nil, err
			}
			err = mapPQError(err, "lock section")
			return nil, err
		}

		if section.SubjectID != sel.SubjectID || section.TermID != termID {
			err = appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrValidation, "section does not offer the selected subject in this term"),
				sel.SectionID,
			)
			return nil, err
		}
		if section.Status == models.SectionStatusClosed {
			err = appErrors.WithDetails(appErrors.Clone(appErrors.ErrSectionClosed, ""), sel.SectionID)
			return nil, err
		}
		if section.Status == models.SectionStatusFull || section.Occupancy >= section.Capacity {
			err = appErrors.WithDetails(appErrors.Clone(appErrors.ErrSectionFull, ""), sel.SectionID)
			return nil, err
		}

		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`UPDATE sections
             SET occupancy = occupancy + 1,
                 status = CASE WHEN occupancy + 1 >= capacity THEN 'full' ELSE status END
             WHERE id = $1 AND status = 'open' AND occupancy < capacity`,
			sel.SectionID)
		if err != nil {
			err = mapPQError(err, "reserve seat")
			return nil, err
		}
		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			err = fmt.Errorf("reserve seat rows: %w", err)
			return nil, err
		}
		if affected == 0 {
			err = appErrors.WithDetails(appErrors.Clone(appErrors.ErrSectionFull, ""), sel.SectionID)
			return nil, err
		}

		record := models.AcademicRecord{
			ID:        uuid.NewString(),
			StudentID: studentID,
			SubjectID: sel.SubjectID,
			TermID:    termID,
			SectionID: sel.SectionID,
			Status:    models.RecordStatusEnrolled,
			CreatedAt: now,
		}
		if _, err = tx.NamedExecContext(ctx,
			`INSERT INTO academic_records (id, student_id, subject_id, term_id, section_id, status, created_at)
             VALUES (:id, :student_id, :subject_id, :term_id, :section_id, :status, :created_at)`,
			record); err != nil {
			err = mapPQError(err, "create record")
			return nil, err
		}
		recordIDs = append(recordIDs, record.ID)
	}

	if err = tx.Commit(); err != nil {
		err = mapPQError(err, "commit enrollment tx")
		return nil, err
	}
	return recordIDs, nil
}

// mapPQError translates driver errors into domain errors where the SQLSTATE
// carries meaning: unique violations are duplicate enrollments, and
// serialization or deadlock failures are retryable conflicts.
func mapPQError(err error, op string) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
		case "40001", "40P01":
			return appErrors.Clone(appErrors.ErrConcurrencyConflict, "")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
