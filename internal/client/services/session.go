// Package services implements the client side of the walletmeta protocol:
// the auth session, trust list, invitation handshake, contact directory,
// secure channel and message bus, plus the Messenger facade that ties them
// to payment flows.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"golang.org/x/sync/singleflight"
)

// AuthSession obtains bearer tokens by signing a server nonce and caches the
// latest one per identity. Safe for concurrent use: readers share the cache,
// and at most one auth exchange per identity is in flight.
type AuthSession struct {
	remote client.Client
	logger logging.Logger

	mu     sync.RWMutex
	tokens map[string]string
	group  singleflight.Group
}

func NewAuthSession(remote client.Client, logger logging.Logger) *AuthSession {
	return &AuthSession{remote: remote, logger: logger, tokens: make(map[string]string)}
}

// Token returns the cached token for id or runs the nonce exchange.
func (s *AuthSession) Token(ctx context.Context, id *identity.Identity) (string, error) {
	s.mu.RLock()
	tok, ok := s.tokens[id.ID()]
	s.mu.RUnlock()
	if ok {
		return tok, nil
	}

	v, err, _ := s.group.Do(id.ID(), func() (any, error) {
		tok, err := s.login(ctx, id)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.tokens[id.ID()] = tok
		s.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *AuthSession) login(ctx context.Context, id *identity.Identity) (string, error) {
	nonce, err := s.remote.GetNonce(ctx)
	if err != nil {
		return "", fmt.Errorf("get nonce: %w", err)
	}

	sig, err := id.Signer().SignMessage(nonce)
	if err != nil {
		return "", fmt.Errorf("%w: sign nonce: %v", common.ErrAuthFailure, err)
	}

	tok, err := s.remote.GetToken(ctx, id.ID(), nonce, sig)
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}

	s.logger.Debug(ctx, "token obtained", "mdid", id.ID())
	return tok, nil
}

// Invalidate drops the cached token for mdid if it still equals stale, so a
// token refreshed concurrently by another caller survives.
func (s *AuthSession) Invalidate(mdid, stale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tokens[mdid]; ok && cur == stale {
		delete(s.tokens, mdid)
	}
}

// Do runs fn with a token for id. If fn fails with common.ErrAuthFailure the
// token is invalidated, a new one is obtained and fn is retried exactly once.
func (s *AuthSession) Do(ctx context.Context, id *identity.Identity, fn func(ctx context.Context, token string) error) error {
	tok, err := s.Token(ctx, id)
	if err != nil {
		return err
	}

	err = fn(ctx, tok)
	if !errors.Is(err, common.ErrAuthFailure) {
		return err
	}

	s.logger.Info(ctx, "token rejected, re-authenticating", "mdid", id.ID())
	s.Invalidate(id.ID(), tok)

	tok, err = s.Token(ctx, id)
	if err != nil {
		return err
	}
	return fn(ctx, tok)
}

// withToken is Do for calls that return a value.
func withToken[T any](ctx context.Context, s *AuthSession, id *identity.Identity, fn func(ctx context.Context, token string) (T, error)) (T, error) {
	var out T
	err := s.Do(ctx, id, func(ctx context.Context, token string) error {
		v, err := fn(ctx, token)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
