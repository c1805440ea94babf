package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/samber/lo"
)

// TrustStore manages an identity's remote trust list. Add and Remove are
// idempotent: reaching the desired state counts as success.
type TrustStore struct {
	remote  client.Client
	session *AuthSession
	logger  logging.Logger
}

func NewTrustStore(remote client.Client, session *AuthSession, logger logging.Logger) *TrustStore {
	return &TrustStore{remote: remote, session: session, logger: logger}
}

func (t *TrustStore) IsTrusted(ctx context.Context, self *identity.Identity, counterpart string) (bool, error) {
	return withToken(ctx, t.session, self, func(ctx context.Context, token string) (bool, error) {
		return t.remote.IsTrusted(ctx, token, counterpart)
	})
}

func (t *TrustStore) Add(ctx context.Context, self *identity.Identity, counterpart string) (bool, error) {
	ok, err := withToken(ctx, t.session, self, func(ctx context.Context, token string) (bool, error) {
		return t.remote.AddTrusted(ctx, token, counterpart)
	})
	if err != nil {
		return false, fmt.Errorf("add trusted %s: %w", counterpart, err)
	}
	t.logger.Info(ctx, "trusted", "mdid", self.ID(), "contact", counterpart)
	return ok, nil
}

func (t *TrustStore) Remove(ctx context.Context, self *identity.Identity, counterpart string) (bool, error) {
	ok, err := withToken(ctx, t.session, self, func(ctx context.Context, token string) (bool, error) {
		return t.remote.RemoveTrusted(ctx, token, counterpart)
	})
	if err != nil {
		return false, fmt.Errorf("remove trusted %s: %w", counterpart, err)
	}
	t.logger.Info(ctx, "untrusted", "mdid", self.ID(), "contact", counterpart)
	return ok, nil
}

// List returns the trust list as a sorted set.
func (t *TrustStore) List(ctx context.Context, self *identity.Identity) ([]string, error) {
	list, err := withToken(ctx, t.session, self, func(ctx context.Context, token string) ([]string, error) {
		return t.remote.TrustedList(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	set := lo.Uniq(list)
	sort.Strings(set)
	return set, nil
}
