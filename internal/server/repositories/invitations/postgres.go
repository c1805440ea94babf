package invitations

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

func scanInvitation(row *sql.Row) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var contact sql.NullString
	if err := row.Scan(&inv.ID, &inv.Mdid, &contact, &inv.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	inv.Contact = contact.String
	return inv, nil
}

func (r *PostgresRepository) Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	query := `
		INSERT INTO invitations (id, mdid)
		VALUES ($1, $2)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, inv.ID, inv.Mdid).Scan(&inv.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inv, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Invitation, error) {
	query := `
		SELECT id, mdid, contact, created_at
		FROM invitations
		WHERE id = $1
	`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Accept(ctx context.Context, id, contact string) (*models.Invitation, error) {
	query := `
		UPDATE invitations SET contact = $2
		WHERE id = $1 AND (contact IS NULL OR contact = $2)
		RETURNING id, mdid, contact, created_at
	`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id, contact))
}

func (r *PostgresRepository) Consume(ctx context.Context, id, mdid string) (*models.Invitation, error) {
	query := `
		DELETE FROM invitations
		WHERE id = $1 AND mdid = $2 AND contact IS NOT NULL
		RETURNING id, mdid, contact, created_at
	`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id, mdid))
}

func (r *PostgresRepository) Delete(ctx context.Context, id, mdid string) error {
	query := `
		DELETE FROM invitations
		WHERE id = $1 AND mdid = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, mdid)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}
