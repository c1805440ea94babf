package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `id, state, intended_amount, address, tx_hash, role, created, note, counterpart`

func (r *SQLiteRepository) Create(ctx context.Context, tx *models.FacilitatedTransaction) error {
	query := `INSERT INTO transactions (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.State, tx.IntendedAmount, tx.Address, tx.TxHash, tx.Role, tx.Created, tx.Note, tx.Counterpart)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, tx *models.FacilitatedTransaction) error {
	query := `UPDATE transactions SET state = ?, address = ?, tx_hash = ?, note = ?, counterpart = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, tx.State, tx.Address, tx.TxHash, tx.Note, tx.Counterpart, tx.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.FacilitatedTransaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE id = ?`
	tx, err := scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.FacilitatedTransaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions ORDER BY created, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	result := make([]*models.FacilitatedTransaction, 0)
	for rows.Next() {
		tx, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.FacilitatedTransaction, error) {
	var tx models.FacilitatedTransaction
	err := s.Scan(&tx.ID, &tx.State, &tx.IntendedAmount, &tx.Address, &tx.TxHash, &tx.Role, &tx.Created, &tx.Note, &tx.Counterpart)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
