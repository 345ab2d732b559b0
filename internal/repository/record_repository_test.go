package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richwell/registrar-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRecordRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	grade := 2.5
	rows := sqlmock.NewRows([]string{"id", "student_id", "subject_id", "term_id", "section_id", "status", "grade", "posted_at", "created_at"}).
		AddRow("rec-1", "stu-1", "sub-1", "term-1", "sec-1", models.RecordStatusCompleted, &grade, time.Now(), time.Now()).
		AddRow("rec-2", "stu-1", "sub-2", "term-1", "sec-2", models.RecordStatusEnrolled, nil, nil, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM academic_records WHERE student_id = \$1 ORDER BY created_at`).
		WithArgs("stu-1").
		WillReturnRows(rows)

	records, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.RecordStatusCompleted, records[0].Status)
	require.NotNil(t, records[0].Grade)
	assert.Equal(t, 2.5, *records[0].Grade)
	assert.Nil(t, records[1].Grade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryListIncomplete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "subject_id", "term_id", "section_id", "status", "grade", "posted_at", "created_at", "subject_code", "subject_kind"}).
		AddRow("rec-1", "stu-1", "sub-1", "term-1", "sec-1", models.RecordStatusInc, nil, nil, time.Now(), "MATH101", models.SubjectKindMajor)
	mock.ExpectQuery(`SELECT .+ FROM academic_records ar\s+JOIN subjects s ON s.id = ar.subject_id\s+WHERE ar.status = \$1`).
		WithArgs(models.RecordStatusInc).
		WillReturnRows(rows)

	records, err := repo.ListIncomplete(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.SubjectKindMajor, records[0].SubjectKind)
	assert.Equal(t, "MATH101", records[0].SubjectCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryTransitionGuarded(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectExec(`UPDATE academic_records SET status = \$3 WHERE id = \$1 AND status = \$2`).
		WithArgs("rec-1", models.RecordStatusInc, models.RecordStatusRepeatRequired).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Transition(context.Background(), "rec-1", models.RecordStatusInc, models.RecordStatusRepeatRequired)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryTransitionAlreadyMoved(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectExec(`UPDATE academic_records SET status = \$3 WHERE id = \$1 AND status = \$2`).
		WithArgs("rec-1", models.RecordStatusInc, models.RecordStatusRepeatRequired).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Transition(context.Background(), "rec-1", models.RecordStatusInc, models.RecordStatusRepeatRequired)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryTransitionRejectsIllegalMove(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	_, err := repo.Transition(context.Background(), "rec-1", models.RecordStatusCompleted, models.RecordStatusInc)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
