package trusted

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns mdid's trusted contacts in the order they were added.
func (r *PostgresRepository) List(ctx context.Context, mdid string) ([]string, error) {
	query := `
		SELECT contact FROM trusted
		WHERE mdid = $1
		ORDER BY created_at, contact
	`
	rows, err := r.db.QueryContext(ctx, query, mdid)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	contacts := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contacts, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, mdid, contact string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM trusted WHERE mdid = $1 AND contact = $2)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, mdid, contact).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Add(ctx context.Context, mdid, contact string) error {
	query := `
		INSERT INTO trusted (mdid, contact)
		VALUES ($1, $2)
		ON CONFLICT (mdid, contact) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, mdid, contact); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, mdid, contact string) error {
	query := `
		DELETE FROM trusted
		WHERE mdid = $1 AND contact = $2
	`
	if _, err := r.db.ExecContext(ctx, query, mdid, contact); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
