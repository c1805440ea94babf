package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabase_CreatesTables(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, name := range []string{"goose_db_version", "metadata", "transactions"} {
		assert.True(t, tableExists(t, db, name), name)
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
}

func TestRepositories_Wired(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	repos := NewRepositories(db)

	require.NoError(t, repos.Metadata.SetCursor(ctx, "1Alice", "m1"))
	c, err := repos.Metadata.Cursor(ctx, "1Alice")
	require.NoError(t, err)
	assert.Equal(t, "m1", c)

	tx := models.NewFacilitatedTransaction(models.RoleRprInitiator, 5000, "lunch")
	require.NoError(t, repos.Transactions.Create(ctx, tx))
	got, err := repos.Transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.IntendedAmount, got.IntendedAmount)
}
