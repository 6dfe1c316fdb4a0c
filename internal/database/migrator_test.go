package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bank-dashboard/internal/logging"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetries(t *testing.T, retries int) {
	t.Helper()
	originalRetries, originalInterval := maxRetries, retryInterval
	maxRetries, retryInterval = retries, 10*time.Millisecond
	t.Cleanup(func() {
		maxRetries, retryInterval = originalRetries, originalInterval
	})
}

func TestNewMigrationRunner_Defaults(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewMigrationRunner(db)

	assert.Equal(t, db, runner.db)
	assert.Equal(t, defaultMigrationsPath, runner.migrationsPath)
	assert.Equal(t, defaultSeedsPath, runner.seedsPath)
	assert.False(t, runner.seed)
}

func TestNewMigrationRunner_Options(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewMigrationRunner(db, WithMigrationsPath("m"), WithSeedsPath("s"), WithSeeding(true))

	assert.Equal(t, "m", runner.migrationsPath)
	assert.Equal(t, "s", runner.seedsPath)
	assert.True(t, runner.seed)
}

func TestWaitForDatabase_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	runner := NewMigrationRunner(db, WithLogger(logging.Discard()))
	assert.NoError(t, runner.WaitForDatabase(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForDatabase_FailureThenSuccess(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	fastRetries(t, 2)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	runner := NewMigrationRunner(db, WithLogger(logging.Discard()))
	assert.NoError(t, runner.WaitForDatabase(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForDatabase_AlwaysFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	fastRetries(t, 2)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	runner := NewMigrationRunner(db, WithLogger(logging.Discard()))
	err = runner.WaitForDatabase(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not ready after 2 attempts")
}

func TestWaitForDatabase_ContextCancelled(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	fastRetries(t, 5)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewMigrationRunner(db, WithLogger(logging.Discard()))
	assert.Error(t, runner.WaitForDatabase(ctx))
}

func TestRunMigrations_DirectoryNotFound(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewMigrationRunner(db, WithLogger(logging.Discard()), WithMigrationsPath("/nonexistent/migrations"))
	assert.NoError(t, runner.RunMigrations())
}

func TestGetMigrationStatus_DirectoryNotFound(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewMigrationRunner(db, WithMigrationsPath("/nonexistent/migrations"))
	_, _, err = runner.GetMigrationStatus()
	assert.ErrorIs(t, err, ErrMigrationsNotFound)
}

func TestRollbackMigrations_RejectsNonPositiveSteps(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewMigrationRunner(db)
	assert.Error(t, runner.RollbackMigrations(0))
}

func TestLoadSeeds_Disabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewMigrationRunner(db, WithSeedsPath(t.TempDir()))
	assert.NoError(t, runner.LoadSeeds())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSeeds_DirectoryNotFound(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewMigrationRunner(db, WithLogger(logging.Discard()), WithSeeding(true), WithSeedsPath("/nonexistent/seeds"))
	assert.NoError(t, runner.LoadSeeds())
}

func TestLoadSeeds_FailureIsSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("INSERT INTO missing VALUES (1);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_users.sql"), []byte("INSERT INTO users (username) VALUES ('demo');"), 0o644))

	mock.ExpectExec("INSERT INTO missing").WillReturnError(errors.New("no such table"))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	runner := NewMigrationRunner(db, WithLogger(logging.Discard()), WithSeeding(true), WithSeedsPath(dir))
	assert.NoError(t, runner.LoadSeeds())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSeeds_ReadFileError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "001_dir.sql"), 0o755))

	runner := NewMigrationRunner(db, WithLogger(logging.Discard()), WithSeeding(true), WithSeedsPath(dir))
	err = runner.LoadSeeds()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read seed file")
}

func TestRunMigrationsIfEnabled_Disabled(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	t.Setenv("AUTO_MIGRATE", "false")

	assert.NoError(t, RunMigrationsIfEnabled(context.Background(), db, logging.Discard()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsIfEnabled_DatabaseNotReady(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	fastRetries(t, 2)

	t.Setenv("AUTO_MIGRATE", "true")
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err = RunMigrationsIfEnabled(context.Background(), db, logging.Discard())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database readiness check failed")
}
