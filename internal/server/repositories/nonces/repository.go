// Package nonces declares the contract for single-use login challenges.
package nonces

import (
	"context"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

// Repository issues and redeems login nonces.
type Repository interface {
	// Create stores nonce with an expiry of now+validity.
	Create(ctx context.Context, nonce string, validity time.Duration) error

	// Consume removes nonce and returns it. A nonce can be consumed once;
	// later attempts return common.ErrorNotFound.
	Consume(ctx context.Context, nonce string) (*models.Nonce, error)

	// DeleteExpired purges nonces that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
