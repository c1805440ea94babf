package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/repomanager"
)

// TrustService manages the caller's own trust list. The list is advisory to
// clients; the store does not use it to gate message delivery.
type TrustService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTrustService(db *sql.DB, m repomanager.RepositoryManager) *TrustService {
	return &TrustService{db: db, repomanager: m}
}

func (s *TrustService) List(ctx context.Context, mdid string) ([]string, error) {
	contacts, err := s.repomanager.Trusted(s.db).List(ctx, mdid)
	if err != nil {
		return nil, fmt.Errorf("error listing trusted: %w", err)
	}
	return contacts, nil
}

func (s *TrustService) IsTrusted(ctx context.Context, mdid, contact string) (bool, error) {
	ok, err := s.repomanager.Trusted(s.db).Exists(ctx, mdid, contact)
	if err != nil {
		return false, fmt.Errorf("error checking trusted: %w", err)
	}
	return ok, nil
}

// Add trusts contact. Trusting an already trusted contact succeeds.
func (s *TrustService) Add(ctx context.Context, mdid, contact string) error {
	if err := identity.ValidateAddress(contact); err != nil {
		return common.ErrorInvalidInput
	}
	if contact == mdid {
		return common.ErrorInvalidInput
	}
	if err := s.repomanager.Trusted(s.db).Add(ctx, mdid, contact); err != nil {
		return fmt.Errorf("error adding trusted: %w", err)
	}
	return nil
}

// Remove untrusts contact. Removing an absent contact succeeds.
func (s *TrustService) Remove(ctx context.Context, mdid, contact string) error {
	if err := s.repomanager.Trusted(s.db).Remove(ctx, mdid, contact); err != nil {
		return fmt.Errorf("error removing trusted: %w", err)
	}
	return nil
}
