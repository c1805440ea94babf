package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/dmitrijs2005/walletmeta/internal/notify"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MessageService relays envelopes between identities. It never looks inside
// a payload; it only checks that the sender signed it.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   notify.Publisher
	logger      logging.Logger
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, p notify.Publisher, l logging.Logger) *MessageService {
	if p == nil {
		p = notify.NopPublisher{}
	}
	return &MessageService{db: db, repomanager: m, publisher: p, logger: l}
}

// Post stores an envelope from sender to recipient. signature must be a
// signed message over payload by sender.
func (s *MessageService) Post(ctx context.Context, sender, recipient string, msgType int, payload, signature string) (*models.Message, error) {
	if err := identity.ValidateAddress(recipient); err != nil {
		return nil, common.ErrorInvalidInput
	}
	if payload == "" {
		return nil, common.ErrorInvalidInput
	}
	if err := identity.VerifyMessage(sender, payload, signature); err != nil {
		return nil, common.ErrInvalidSignature
	}

	m, err := s.repomanager.Messages(s.db).Create(ctx, &models.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Type:      msgType,
		Payload:   payload,
		Signature: signature,
	})
	if err != nil {
		return nil, fmt.Errorf("error storing message: %w", err)
	}

	ev := notify.Event{ID: m.ID, Sender: sender, Type: msgType, Posted: unixMilli(m.CreatedAt)}
	if err := s.publisher.MessagePosted(ctx, recipient, ev); err != nil {
		s.logger.Warn(ctx, "notification not published", "id", m.ID, "error", err)
	}
	return m, nil
}

// List returns recipient's inbox in posting order. processed and afterID are
// mutually exclusive; with neither, the whole inbox is returned.
func (s *MessageService) List(ctx context.Context, recipient string, processed *bool, afterID string) ([]models.Message, error) {
	repo := s.repomanager.Messages(s.db)

	var (
		list []models.Message
		err  error
	)
	switch {
	case processed != nil && afterID != "":
		return nil, common.ErrorInvalidInput
	case processed != nil:
		list, err = repo.ListByProcessed(ctx, recipient, *processed)
	case afterID != "":
		list, err = repo.ListAfter(ctx, recipient, afterID)
	default:
		list, err = repo.List(ctx, recipient)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return list, nil
}

// Get returns a message the caller sent or received.
func (s *MessageService) Get(ctx context.Context, mdid, id string) (*models.Message, error) {
	return s.repomanager.Messages(s.db).Get(ctx, mdid, id)
}

// SetProcessed flips the processed flag. Only the recipient may do so.
func (s *MessageService) SetProcessed(ctx context.Context, recipient, id string, processed bool) (*models.Message, error) {
	return s.repomanager.Messages(s.db).SetProcessed(ctx, recipient, id, processed)
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
