// Package invitations stores handshake records.
package invitations

import (
	"context"

	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

// Repository persists invitations. Accept and Consume are conditional updates
// so concurrent callers cannot both succeed.
type Repository interface {
	Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error)
	Get(ctx context.Context, id string) (*models.Invitation, error)
	// Accept sets contact on an invitation that has none yet (or already
	// has this very contact).
	Accept(ctx context.Context, id, contact string) (*models.Invitation, error)
	// Consume deletes an accepted invitation owned by mdid and returns it.
	Consume(ctx context.Context, id, mdid string) (*models.Invitation, error)
	Delete(ctx context.Context, id, mdid string) error
}
