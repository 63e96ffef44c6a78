package files

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docshare/internal/dbx"
	"github.com/dmitrijs2005/docshare/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the record and fills in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (filename, path, uploaded_by, size, checksum)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.Filename, file.Path, file.UploadedBy, file.Size, file.Checksum).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return file, nil
}

const selectFile = `SELECT id, filename, path, uploaded_by, size, checksum, created_at FROM files`

func scanFile(row interface{ Scan(...any) error }) (*models.File, error) {
	f := &models.File{}
	if err := row.Scan(&f.ID, &f.Filename, &f.Path, &f.UploadedBy, &f.Size, &f.Checksum, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

// GetByID returns common.ErrorNotFound when no record has the id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	f, err := scanFile(r.db.QueryRowContext(ctx, selectFile+` WHERE id = $1`, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return f, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.File, error) {
	return r.list(ctx, selectFile+` ORDER BY id DESC`)
}

func (r *PostgresRepository) ListByUploader(ctx context.Context, userID int64) ([]*models.File, error) {
	return r.list(ctx, selectFile+` WHERE uploaded_by = $1 ORDER BY id DESC`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// Delete removes the record. Deleting a missing record returns common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.RequireAffected(res)
}
