package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/client/migrations"
	"github.com/dmitrijs2005/walletmeta/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/walletmeta/internal/client/repositories/transactions"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local stores.
type Repositories struct {
	Metadata     metadata.Repository
	Transactions transactions.Repository
}

// NewRepositories binds the local stores to db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata:     metadata.NewSQLiteRepository(db),
		Transactions: transactions.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn and applies migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return db, nil
}
