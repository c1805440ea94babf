// Package transactions persists facilitated transactions in the local
// SQLite database.
package transactions

import (
	"context"

	"github.com/dmitrijs2005/walletmeta/internal/client/models"
)

// Repository stores facilitated transactions. Records are never deleted.
type Repository interface {
	// Create inserts a new transaction.
	Create(ctx context.Context, tx *models.FacilitatedTransaction) error

	// Update overwrites the mutable fields of an existing transaction and
	// returns common.ErrorNotFound if it does not exist.
	Update(ctx context.Context, tx *models.FacilitatedTransaction) error

	// GetByID returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.FacilitatedTransaction, error)

	// List returns all transactions, oldest first.
	List(ctx context.Context) ([]*models.FacilitatedTransaction, error)
}
