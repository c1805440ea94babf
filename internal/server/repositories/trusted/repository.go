// Package trusted stores each identity's trust list.
package trusted

import "context"

// Repository manages the (owner, contact) pairs of trust lists. Add and
// Remove are idempotent.
type Repository interface {
	List(ctx context.Context, mdid string) ([]string, error)
	Exists(ctx context.Context, mdid, contact string) (bool, error)
	Add(ctx context.Context, mdid, contact string) error
	Remove(ctx context.Context, mdid, contact string) error
}
