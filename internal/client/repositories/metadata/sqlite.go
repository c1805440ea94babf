package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Cursor(ctx context.Context, owner string) (string, error) {
	key := CursorKey(owner)

	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("read cursor %s: %w", key, err)
	}
	return string(value), nil
}

// SetCursor moves owner's cursor. An empty messageID forgets it, so the next
// fetch starts from the beginning of the inbox.
func (r *SQLiteRepository) SetCursor(ctx context.Context, owner, messageID string) error {
	key := CursorKey(owner)

	var err error
	if messageID == "" {
		_, err = r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	} else {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, []byte(messageID))
	}
	if err != nil {
		return fmt.Errorf("write cursor %s: %w", key, err)
	}
	return nil
}
