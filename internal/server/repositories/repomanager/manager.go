package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tutorsync/internal/dbx"
	"github.com/dmitrijs2005/tutorsync/internal/server/repositories/nodes"
	"github.com/dmitrijs2005/tutorsync/internal/server/repositories/packages"
)

// RepositoryManager vends repositories bound to a DBTX so services can run
// them either on the pool or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Nodes(db dbx.DBTX) nodes.Repository
	Packages(db dbx.DBTX) packages.Repository
}
