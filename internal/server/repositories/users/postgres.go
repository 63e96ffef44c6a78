package users

import (
	"context"

	"github.com/dmitrijs2005/docshare/internal/dbx"
	"github.com/dmitrijs2005/docshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash, role, is_verified)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, string(user.Role), user.IsVerified).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return nil, dbx.Classify(err)
	}

	return user, nil
}

const selectUser = `SELECT id, email, password_hash, role, is_verified, created_at FROM users`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var role string

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.IsVerified, &user.CreatedAt)

	if err != nil {
		return nil, dbx.Classify(err)
	}

	user.Role = models.Role(role)
	return user, nil
}

// MarkVerified sets is_verified for the user. Verifying an already
// verified account is not an error.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.RequireAffected(res)
}
