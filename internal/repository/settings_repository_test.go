package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepositoryGetFloat(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \$1`).
		WithArgs("freshman_unit_cap").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("24"))

	value, found, err := repo.GetFloat(context.Background(), "freshman_unit_cap")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 24.0, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryMissingKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \$1`).
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, found, err := repo.GetFloat(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGetBool(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \$1`).
		WithArgs("cap_applies_to_all").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("true"))

	value, found, err := repo.GetBool(context.Background(), "cap_applies_to_all")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryUnparseableValue(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \$1`).
		WithArgs("freshman_unit_cap").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("lots"))

	_, _, err := repo.GetFloat(context.Background(), "freshman_unit_cap")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
