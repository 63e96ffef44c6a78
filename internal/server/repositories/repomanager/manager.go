package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docshare/internal/dbx"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the pool or an
// open transaction, so services can choose per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) ([]int64, error)
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Revocations(db dbx.DBTX) revocations.Repository
}
