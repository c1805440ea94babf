// Package metadata is the client's local key-value store. It keeps small
// pieces of per-identity state such as the inbox cursor.
package metadata

import (
	"context"
)

type Repository interface {
	// Cursor returns the id of the last message seen by owner, or "".
	Cursor(ctx context.Context, owner string) (string, error)
	SetCursor(ctx context.Context, owner, messageID string) error
}

// CursorKey is the key under which owner's inbox cursor is stored.
func CursorKey(owner string) string {
	return "cursor:" + owner
}
