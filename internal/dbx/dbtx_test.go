package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// openLedger opens a private in-memory sqlite database with one table.
func openLedger(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ledger (id INTEGER PRIMARY KEY, note TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func notes(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ledger`).Scan(&n))
	return n
}

func insertNote(ctx context.Context, tx DBTX, note string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO ledger(note) VALUES (?)`, note)
	return err
}

func TestWithTx_Outcome(t *testing.T) {
	sentinel := errors.New("sentinel")

	tests := []struct {
		name      string
		fn        TxFunc
		wantErr   error
		wantNotes int
	}{
		{
			name:      "commit",
			fn:        func(ctx context.Context, tx DBTX) error { return insertNote(ctx, tx, "kept") },
			wantNotes: 1,
		},
		{
			name: "rollback keeps sentinel",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := insertNote(ctx, tx, "dropped"); err != nil {
					return err
				}
				return fmt.Errorf("wrapped: %w", sentinel)
			},
			wantErr:   sentinel,
			wantNotes: 0,
		},
		{
			name: "reads own writes",
			fn: func(ctx context.Context, tx DBTX) error {
				for _, n := range []string{"a", "b"} {
					if err := insertNote(ctx, tx, n); err != nil {
						return err
					}
				}
				var n int
				if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger`).Scan(&n); err != nil {
					return err
				}
				if n != 2 {
					return fmt.Errorf("saw %d rows", n)
				}
				return nil
			},
			wantNotes: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openLedger(t)
			err := WithTx(context.Background(), db, nil, tt.fn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantNotes, notes(t, db))
		})
	}
}

func TestWithTx_PanicRollsBack(t *testing.T) {
	db := openLedger(t)

	assert.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			if err := insertNote(ctx, tx, "lost"); err != nil {
				return err
			}
			panic("kaput")
		})
	})
	assert.Equal(t, 0, notes(t, db))
}

func TestWithTx_DriverFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("begin", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin().WillReturnError(boom)

		err = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "begin tx")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(boom)

		err = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return nil })
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "commit")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback joins", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(boom)

		fnErr := errors.New("fn failed")
		err = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return fnErr })
		assert.ErrorIs(t, err, fnErr)
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
