// Package messages stores posted envelopes per recipient.
package messages

import (
	"context"

	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

// Repository persists envelopes. Listing is always in posting order.
type Repository interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	List(ctx context.Context, recipient string) ([]models.Message, error)
	ListByProcessed(ctx context.Context, recipient string, processed bool) ([]models.Message, error)
	// ListAfter returns messages posted after afterID. An afterID the
	// recipient does not own yields the whole inbox.
	ListAfter(ctx context.Context, recipient, afterID string) ([]models.Message, error)
	// Get returns a message visible to mdid as sender or recipient.
	Get(ctx context.Context, mdid, id string) (*models.Message, error)
	// SetProcessed flips the flag on a message addressed to recipient.
	SetProcessed(ctx context.Context, recipient, id string, processed bool) (*models.Message, error)
}
