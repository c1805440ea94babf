package nonces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/dbx"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

// PostgresRepository stores nonces over dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, nonce string, validity time.Duration) error {
	query := `
		INSERT INTO nonces (nonce, expires_at)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, nonce, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, nonce string) (*models.Nonce, error) {
	query := `
		DELETE FROM nonces
		WHERE nonce = $1
		RETURNING nonce, expires_at, created_at
	`
	n := &models.Nonce{}
	if err := r.db.QueryRowContext(ctx, query, nonce).Scan(&n.Value, &n.Expires, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM nonces
		WHERE expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
