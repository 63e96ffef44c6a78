package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	results []*goose.MigrationResult
	err     error
	calls   int
}

func (f *fakeMigrator) Up(context.Context) ([]*goose.MigrationResult, error) {
	f.calls++
	return f.results, f.err
}

func withMigrator(t *testing.T, m migrator, err error) {
	t.Helper()
	orig := newMigrator
	newMigrator = func(*sql.DB) (migrator, error) { return m, err }
	t.Cleanup(func() { newMigrator = orig })
}

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepositories_BoundToHandle(t *testing.T) {
	db := newDB(t)
	var m RepositoryManager = NewPostgresRepositoryManager()

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.Files(db))
	assert.NotNil(t, m.RefreshTokens(db))
	assert.NotNil(t, m.Revocations(db))
}

func TestRunMigrations_ReportsAppliedVersions(t *testing.T) {
	fm := &fakeMigrator{results: []*goose.MigrationResult{
		{Source: &goose.Source{Version: 1}},
		{Source: &goose.Source{Version: 2}},
		{},
	}}
	withMigrator(t, fm, nil)

	got, err := NewPostgresRepositoryManager().RunMigrations(context.Background(), newDB(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got)
	assert.Equal(t, 1, fm.calls)
}

func TestRunMigrations_NothingPending(t *testing.T) {
	withMigrator(t, &fakeMigrator{}, nil)

	got, err := NewPostgresRepositoryManager().RunMigrations(context.Background(), newDB(t))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunMigrations_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("provider", func(t *testing.T) {
		withMigrator(t, nil, boom)
		_, err := NewPostgresRepositoryManager().RunMigrations(context.Background(), newDB(t))
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "migration provider")
	})

	t.Run("up", func(t *testing.T) {
		withMigrator(t, &fakeMigrator{err: boom}, nil)
		_, err := NewPostgresRepositoryManager().RunMigrations(context.Background(), newDB(t))
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "applying migrations")
	})
}
