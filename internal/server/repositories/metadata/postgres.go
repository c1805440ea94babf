package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/dbx"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, blob *models.MetadataBlob) error {
	query := `
		INSERT INTO metadata (address, payload, signature, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (address) DO UPDATE
		SET payload = EXCLUDED.payload, signature = EXCLUDED.signature, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, blob.Address, blob.Payload, blob.Signature); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, address string) (*models.MetadataBlob, error) {
	query := `
		SELECT address, payload, signature, updated_at
		FROM metadata
		WHERE address = $1
	`
	b := &models.MetadataBlob{}
	if err := r.db.QueryRowContext(ctx, query, address).Scan(&b.Address, &b.Payload, &b.Signature, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}
