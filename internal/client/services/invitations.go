package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
)

// InvitationHandshake drives the invitation protocol. Every check is a
// single round trip; callers choose the polling cadence.
type InvitationHandshake struct {
	remote  client.Client
	session *AuthSession
	trust   *TrustStore
	logger  logging.Logger
}

func NewInvitationHandshake(remote client.Client, session *AuthSession, trust *TrustStore, logger logging.Logger) *InvitationHandshake {
	return &InvitationHandshake{remote: remote, session: session, trust: trust, logger: logger}
}

// CreateOutgoing registers a fresh invitation with no counterpart yet.
func (h *InvitationHandshake) CreateOutgoing(ctx context.Context, self *identity.Identity) (*models.Invitation, error) {
	inv, err := withToken(ctx, h.session, self, func(ctx context.Context, token string) (*client.RemoteInvitation, error) {
		return h.remote.CreateInvitation(ctx, token)
	})
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return &models.Invitation{ID: inv.ID, Status: models.InvitationSent}, nil
}

// PollResolution returns the acceptor's id, or "" while nobody accepted.
func (h *InvitationHandshake) PollResolution(ctx context.Context, self *identity.Identity, invitationID string) (string, error) {
	inv, err := withToken(ctx, h.session, self, func(ctx context.Context, token string) (*client.RemoteInvitation, error) {
		return h.remote.ReadInvitation(ctx, token, invitationID)
	})
	if err != nil {
		h.logNotFound(ctx, invitationID, err)
		return "", err
	}
	return inv.Contact, nil
}

// Consume reads the acceptor's id and deletes the invitation in one step.
// An unaccepted, consumed or unknown invitation yields
// common.ErrInvitationNotFound.
func (h *InvitationHandshake) Consume(ctx context.Context, self *identity.Identity, invitationID string) (string, error) {
	inv, err := withToken(ctx, h.session, self, func(ctx context.Context, token string) (*client.RemoteInvitation, error) {
		return h.remote.ConsumeInvitation(ctx, token, invitationID)
	})
	if err != nil {
		h.logNotFound(ctx, invitationID, err)
		return "", err
	}
	return inv.Contact, nil
}

// Accept writes self into the invitation and trusts the inviter. It returns
// the inviter's id.
func (h *InvitationHandshake) Accept(ctx context.Context, self *identity.Identity, invitationID string) (string, error) {
	inv, err := withToken(ctx, h.session, self, func(ctx context.Context, token string) (*client.RemoteInvitation, error) {
		return h.remote.AcceptInvitation(ctx, token, invitationID)
	})
	if err != nil {
		return "", fmt.Errorf("accept invitation: %w", err)
	}

	if _, err := h.trust.Add(ctx, self, inv.Inviter); err != nil {
		return "", err
	}
	return inv.Inviter, nil
}

// Delete withdraws an invitation created by self.
func (h *InvitationHandshake) Delete(ctx context.Context, self *identity.Identity, invitationID string) error {
	return h.session.Do(ctx, self, func(ctx context.Context, token string) error {
		return h.remote.DeleteInvitation(ctx, token, invitationID)
	})
}

func (h *InvitationHandshake) logNotFound(ctx context.Context, invitationID string, err error) {
	if errors.Is(err, common.ErrInvitationNotFound) {
		h.logger.Info(ctx, "invitation not found", "invitation", invitationID)
	}
}
