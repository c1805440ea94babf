package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/walletmeta/internal/dbx"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/invitations"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/messages"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/metadata"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/nonces"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/trusted"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Nonces(db dbx.DBTX) nonces.Repository
	Trusted(db dbx.DBTX) trusted.Repository
	Messages(db dbx.DBTX) messages.Repository
	Invitations(db dbx.DBTX) invitations.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}
