package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp_Success(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cache_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = MigrateUp(database)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_TableCreationFails(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cache_entries").
		WillReturnError(assert.AnError)

	err = MigrateUp(database)
	assert.Error(t, err)
}

func TestMigrateUp_IndexCreationFails(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cache_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at").
		WillReturnError(assert.AnError)

	err = MigrateUp(database)
	assert.Error(t, err)
}

func TestOpen_MissingDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
