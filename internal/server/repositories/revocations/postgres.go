package revocations

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/docshare/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`
	var exp sql.NullTime
	if !expiresAt.IsZero() {
		exp = sql.NullTime{Time: expiresAt, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, tokenID, exp); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *PostgresRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, tokenID).Scan(&revoked)
	if err != nil {
		return false, dbx.Classify(err)
	}
	return revoked, nil
}

func (r *PostgresRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at IS NOT NULL AND expires_at < $1`, before)
	if err != nil {
		return 0, dbx.Classify(err)
	}
	return dbx.Affected(res)
}
