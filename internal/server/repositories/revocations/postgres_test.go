package revocations

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const revokeQ = `(?s)INSERT\s+INTO\s+revoked_tokens\s*\(jti,\s*expires_at\).*ON\s+CONFLICT\s*\(jti\)\s+DO\s+NOTHING`

func TestRevoke(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	exp := time.Now().Add(time.Hour)
	mock.ExpectExec(revokeQ).
		WithArgs("jti-1", sql.NullTime{Time: exp, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(revokeQ).
		WithArgs("jti-2", sql.NullTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(revokeQ).
		WithArgs("jti-3", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	require.NoError(t, repo.Revoke(context.Background(), "jti-1", exp))
	require.NoError(t, repo.Revoke(context.Background(), "jti-2", time.Time{}))
	assert.ErrorContains(t, repo.Revoke(context.Background(), "jti-3", exp), "db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRevoked(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+revoked_tokens\s+WHERE\s+jti\s*=\s*\$1\)`
	mock.ExpectQuery(q).WithArgs("yes").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("no").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(q).WithArgs("err").WillReturnError(errors.New("boom"))

	got, err := repo.IsRevoked(context.Background(), "yes")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = repo.IsRevoked(context.Background(), "no")
	require.NoError(t, err)
	assert.False(t, got)

	_, err = repo.IsRevoked(context.Background(), "err")
	assert.ErrorContains(t, err, "db error: boom")
}

func TestPurge(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	cutoff := time.Now()
	mock.ExpectExec(`DELETE\s+FROM\s+revoked_tokens\s+WHERE\s+expires_at\s+IS\s+NOT\s+NULL\s+AND\s+expires_at\s*<\s*\$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.Purge(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
