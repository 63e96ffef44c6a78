// Package repomanager binds the repository constructors to a database
// handle and applies the embedded schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/docshare/internal/dbx"
	"github.com/dmitrijs2005/docshare/internal/server/migrations"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// migrator is the part of *goose.Provider RunMigrations needs.
type migrator interface {
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
}

// newMigrator is a seam for tests.
var newMigrator = func(db *sql.DB) (migrator, error) {
	return goose.NewProvider(goose.DialectPostgres, db, migrations.Migrations)
}

// PostgresRepositoryManager vends PostgreSQL repositories.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return files.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Revocations(db dbx.DBTX) revocations.Repository {
	return revocations.NewPostgresRepository(db)
}

// RunMigrations applies every pending embedded migration and returns the
// versions it applied, oldest first. Already applied versions are skipped.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) ([]int64, error) {
	p, err := newMigrator(db)
	if err != nil {
		return nil, fmt.Errorf("migration provider: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		if r.Source != nil {
			applied = append(applied, r.Source.Version)
		}
	}
	return applied, nil
}
