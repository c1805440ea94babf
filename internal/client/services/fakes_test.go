package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/client/client/clienttest"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/stretchr/testify/require"
)

// party is one local actor wired to a shared remote.
type party struct {
	id        *identity.Identity
	session   *AuthSession
	trust     *TrustStore
	handshake *InvitationHandshake
	contacts  *ContactDirectory
	channel   *SecureChannel
	bus       *MessageBus
	messenger *Messenger
	repos     *client.Repositories
}

func newParty(t *testing.T, remote *clienttest.Remote) *party {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)

	logger := logging.NewNop()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	p := &party{id: id, repos: client.NewRepositories(db)}
	p.session = NewAuthSession(remote, logger)
	p.trust = NewTrustStore(remote, p.session, logger)
	p.handshake = NewInvitationHandshake(remote, p.session, p.trust, logger)
	p.contacts, err = NewContactDirectory(id, remote, p.handshake, p.trust, logger)
	require.NoError(t, err)
	p.channel = NewSecureChannel(remote, p.session, id)
	p.bus = NewMessageBus(remote, p.session, logger)
	p.messenger = NewMessenger(id, p.bus, p.channel, p.trust, p.repos, logger)
	return p
}
