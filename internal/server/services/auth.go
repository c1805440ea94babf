// Package services contains the metadata store's business logic. AuthService
// runs the nonce challenge: a client fetches a nonce, signs it with the key
// behind its identity address, and trades the signature for an access token.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/server/auth"
	"github.com/dmitrijs2005/walletmeta/internal/server/config"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/repomanager"
)

type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	nonceValidityDuration       time.Duration
	now                         func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		nonceValidityDuration:       cfg.NonceValidityDuration,
		now:                         time.Now,
	}
}

// IssueNonce stores and returns a fresh single-use challenge.
func (s *AuthService) IssueNonce(ctx context.Context) (string, error) {
	nonce, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrorInternal
	}
	if err := s.repomanager.Nonces(s.db).Create(ctx, nonce, s.nonceValidityDuration); err != nil {
		return "", fmt.Errorf("error storing nonce: %w", err)
	}
	return nonce, nil
}

// Login redeems nonce and, if signature is a valid signed message over it by
// mdid, returns an access token for mdid. The nonce is burned even when the
// signature turns out to be wrong.
func (s *AuthService) Login(ctx context.Context, mdid, nonce, signature string) (string, error) {
	if err := identity.ValidateAddress(mdid); err != nil {
		return "", common.ErrorInvalidInput
	}

	n, err := s.repomanager.Nonces(s.db).Consume(ctx, nonce)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidNonce
		}
		return "", fmt.Errorf("error redeeming nonce: %w", err)
	}
	if n.Expires.Before(s.now()) {
		return "", common.ErrInvalidNonce
	}

	if err := identity.VerifyMessage(mdid, nonce, signature); err != nil {
		return "", common.ErrInvalidSignature
	}

	token, err := auth.GenerateToken(mdid, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Authenticate returns the identity an access token was issued to.
func (s *AuthService) Authenticate(token string) (string, error) {
	return auth.IdentityFromToken(token, s.jwtSecret)
}

// PurgeExpiredNonces drops challenges nobody redeemed in time.
func (s *AuthService) PurgeExpiredNonces(ctx context.Context) (int64, error) {
	return s.repomanager.Nonces(s.db).DeleteExpired(ctx, s.now())
}
