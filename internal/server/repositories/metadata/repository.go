// Package metadata stores address-keyed blobs in PostgreSQL.
package metadata

import (
	"context"

	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

// Repository is last-writer-wins storage keyed by address.
type Repository interface {
	Put(ctx context.Context, blob *models.MetadataBlob) error
	Get(ctx context.Context, address string) (*models.MetadataBlob, error)
}
