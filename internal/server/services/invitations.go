package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// InvitationService stores handshake records. An invitation is created by
// its inviter, claimed once by an acceptor, and consumed (deleted) once by
// the inviter.
type InvitationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewInvitationService(db *sql.DB, m repomanager.RepositoryManager) *InvitationService {
	return &InvitationService{db: db, repomanager: m}
}

func (s *InvitationService) Create(ctx context.Context, mdid string) (*models.Invitation, error) {
	inv, err := s.repomanager.Invitations(s.db).Create(ctx, &models.Invitation{ID: uuid.NewString(), Mdid: mdid})
	if err != nil {
		return nil, fmt.Errorf("error creating invitation: %w", err)
	}
	return inv, nil
}

func (s *InvitationService) Read(ctx context.Context, id string) (*models.Invitation, error) {
	return s.repomanager.Invitations(s.db).Get(ctx, id)
}

// Accept records contact as the counterpart. Accepting twice as the same
// contact is a no-op; an invitation claimed by someone else is a conflict.
func (s *InvitationService) Accept(ctx context.Context, id, contact string) (*models.Invitation, error) {
	repo := s.repomanager.Invitations(s.db)

	inv, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Mdid == contact {
		return nil, common.ErrorInvalidInput
	}

	accepted, err := repo.Accept(ctx, id, contact)
	if errors.Is(err, common.ErrorNotFound) {
		// the row exists, so the guard lost to another acceptor
		return nil, common.ErrorConflict
	}
	return accepted, err
}

// Consume deletes an accepted invitation owned by mdid and returns the
// counterpart. Pending, foreign and already consumed invitations all report
// common.ErrorNotFound.
func (s *InvitationService) Consume(ctx context.Context, id, mdid string) (*models.Invitation, error) {
	return s.repomanager.Invitations(s.db).Consume(ctx, id, mdid)
}

func (s *InvitationService) Delete(ctx context.Context, id, mdid string) error {
	return s.repomanager.Invitations(s.db).Delete(ctx, id, mdid)
}
