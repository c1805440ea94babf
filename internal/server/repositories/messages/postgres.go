package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/dbx"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

const columns = `seq, id, sender, recipient, type, payload, signature, processed, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*models.Message, error) {
	m := &models.Message{}
	err := s.Scan(&m.Seq, &m.ID, &m.Sender, &m.Recipient, &m.Type, &m.Payload, &m.Signature, &m.Processed, &m.CreatedAt)
	return m, err
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (id, sender, recipient, type, payload, signature)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq, created_at
	`
	err := r.db.QueryRowContext(ctx, query, m.ID, m.Sender, m.Recipient, m.Type, m.Payload, m.Signature).
		Scan(&m.Seq, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context, recipient string) ([]models.Message, error) {
	query := `SELECT ` + columns + `
		FROM messages
		WHERE recipient = $1
		ORDER BY seq
	`
	return r.list(ctx, query, recipient)
}

func (r *PostgresRepository) ListByProcessed(ctx context.Context, recipient string, processed bool) ([]models.Message, error) {
	query := `SELECT ` + columns + `
		FROM messages
		WHERE recipient = $1 AND processed = $2
		ORDER BY seq
	`
	return r.list(ctx, query, recipient, processed)
}

func (r *PostgresRepository) ListAfter(ctx context.Context, recipient, afterID string) ([]models.Message, error) {
	query := `SELECT ` + columns + `
		FROM messages
		WHERE recipient = $1
		  AND seq > COALESCE((SELECT seq FROM messages WHERE id = $2 AND recipient = $1), 0)
		ORDER BY seq
	`
	return r.list(ctx, query, recipient, afterID)
}

func (r *PostgresRepository) Get(ctx context.Context, mdid, id string) (*models.Message, error) {
	query := `SELECT ` + columns + `
		FROM messages
		WHERE id = $1 AND (recipient = $2 OR sender = $2)
	`
	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id, mdid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) SetProcessed(ctx context.Context, recipient, id string, processed bool) (*models.Message, error) {
	query := `
		UPDATE messages SET processed = $3
		WHERE id = $1 AND recipient = $2
		RETURNING ` + columns
	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id, recipient, processed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}
