package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richwell/registrar-api/internal/models"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
)

func sectionRows(id, subjectID, termID string, capacity, occupancy int, status models.SectionStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "subject_id", "term_id", "capacity", "occupancy", "status"}).
		AddRow(id, subjectID, termID, capacity, occupancy, status)
}

func TestCommitEnrollmentHappyPath(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()

	mock.ExpectQuery(`SELECT id, subject_id, term_id, capacity, occupancy, status FROM sections WHERE id = \$1 FOR UPDATE`).
		WithArgs("sec-1").
		WillReturnRows(sectionRows("sec-1", "sub-1", "term-1", 40, 10, models.SectionStatusOpen))
	mock.ExpectExec(`UPDATE sections\s+SET occupancy = occupancy \+ 1`).
		WithArgs("sec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO academic_records`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT id, subject_id, term_id, capacity, occupancy, status FROM sections WHERE id = \$1 FOR UPDATE`).
		WithArgs("sec-2").
		WillReturnRows(sectionRows("sec-2", "sub-2", "term-1", 40, 39, models.SectionStatusOpen))
	mock.ExpectExec(`UPDATE sections\s+SET occupancy = occupancy \+ 1`).
		WithArgs("sec-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO academic_records`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	recordIDs, err := repo.CommitEnrollment(context.Background(), "stu-1", "term-1", []models.SubjectSelection{
		{SubjectID: "sub-1", SectionID: "sec-1"},
		{SubjectID: "sub-2", SectionID: "sec-2"},
	})
	require.NoError(t, err)
	assert.Len(t, recordIDs, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitEnrollmentSectionFullRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, subject_id, term_id, capacity, occupancy, status FROM sections WHERE id = \$1 FOR UPDATE`).
		WithArgs("sec-1").
		WillReturnRows(sectionRows("sec-1", "sub-1", "term-1", 40, 40, models.SectionStatusFull))
	mock.ExpectRollback()

	_, err := repo.CommitEnrollment(context.Background(), "stu-1", "term-1", []models.SubjectSelection{
		{SubjectID: "sub-1", SectionID: "sec-1"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSectionFull))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitEnrollmentClosedSectionRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, subject_id, term_id, capacity, occupancy, status FROM sections WHERE id = \$1 FOR UPDATE`).
		WithArgs("sec-1").
		WillReturnRows(sectionRows("sec-1", "sub-1", "term-1", 40, 5, models.SectionStatusClosed))
	mock.ExpectRollback()

	_, err := repo.CommitEnrollment(context.Background(), "stu-1", "term-1", []models.SubjectSelection{
		{SubjectID: "sub-1", SectionID: "sec-1"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSectionClosed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitEnrollmentSectionMismatchRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, subject_id, term_id, capacity, occupancy, status FROM sections WHERE id = \$1 FOR UPDATE`).
		WithArgs("sec-1").
		WillReturnRows(sectionRows("sec-1", "sub-other", "term-1", 40, 5, models.SectionStatusOpen))
	mock.ExpectRollback()

	_, err := repo.CommitEnrollment(context.Background(), "stu-1", "term-1", []models.SubjectSelection{
		{SubjectID: "sub-1", SectionID: "sec-1"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitEnrollmentLostSeatRaceRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	// The row read as open, but the guarded update matched nothing. The
	// losing request must not create any record.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, subject_id, term_id, capacity, occupancy, status FROM sections WHERE id = \$1 FOR UPDATE`).
		WithArgs("sec-1").
		WillReturnRows(sectionRows("sec-1", "sub-1", "term-1", 40, 39, models.SectionStatusOpen))
	mock.ExpectExec(`UPDATE sections\s+SET occupancy = occupancy \+ 1`).
		WithArgs("sec-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.CommitEnrollment(context.Background(), "stu-1", "term-1", []models.SubjectSelection{
		{SubjectID: "sub-1", SectionID: "sec-1"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSectionFull))
	require.NoError(t, mock.ExpectationsWereMet())
}
