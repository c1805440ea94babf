// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/walletmeta/internal/dbx"
	"github.com/dmitrijs2005/walletmeta/internal/server/migrations"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/invitations"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/messages"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/metadata"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/nonces"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/trusted"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Nonces(db dbx.DBTX) nonces.Repository {
	return nonces.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Trusted(db dbx.DBTX) trusted.Repository {
	return trusted.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Messages(db dbx.DBTX) messages.Repository {
	return messages.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Invitations(db dbx.DBTX) invitations.Repository {
	return invitations.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// OpenPostgres opens a pgx-backed *sql.DB and verifies connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
