package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/walletmeta/internal/client/client/clienttest"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitation_RoundTrip(t *testing.T) {
	remote := clienttest.New()
	alice := newParty(t, remote)
	bob := newParty(t, remote)
	ctx := context.Background()

	inv, err := alice.handshake.CreateOutgoing(ctx, alice.id)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationSent, inv.Status)
	assert.NotEmpty(t, inv.ID)

	_, err = alice.handshake.Consume(ctx, alice.id, inv.ID)
	require.ErrorIs(t, err, common.ErrInvitationNotFound, "nothing to consume before acceptance")

	who, err := alice.handshake.PollResolution(ctx, alice.id, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, who)

	inviter, err := bob.handshake.Accept(ctx, bob.id, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.id.ID(), inviter)

	who, err = alice.handshake.PollResolution(ctx, alice.id, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.id.ID(), who)

	got, err := alice.handshake.Consume(ctx, alice.id, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.id.ID(), got)

	_, err = alice.handshake.Consume(ctx, alice.id, inv.ID)
	require.ErrorIs(t, err, common.ErrInvitationNotFound)

	_, err = alice.handshake.PollResolution(ctx, alice.id, inv.ID)
	require.ErrorIs(t, err, common.ErrInvitationNotFound)
}

func TestInvitation_OnlyAcceptorTrusts(t *testing.T) {
	remote := clienttest.New()
	alice := newParty(t, remote)
	bob := newParty(t, remote)
	ctx := context.Background()

	inv, err := alice.handshake.CreateOutgoing(ctx, alice.id)
	require.NoError(t, err)
	_, err = bob.handshake.Accept(ctx, bob.id, inv.ID)
	require.NoError(t, err)

	bobTrusts, err := bob.trust.IsTrusted(ctx, bob.id, alice.id.ID())
	require.NoError(t, err)
	assert.True(t, bobTrusts)

	aliceTrusts, err := alice.trust.IsTrusted(ctx, alice.id, bob.id.ID())
	require.NoError(t, err)
	assert.False(t, aliceTrusts)
}

func TestInvitation_AcceptUnknown(t *testing.T) {
	remote := clienttest.New()
	bob := newParty(t, remote)

	_, err := bob.handshake.Accept(context.Background(), bob.id, "missing")
	require.ErrorIs(t, err, common.ErrInvitationNotFound)

	list, err := bob.trust.List(context.Background(), bob.id)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvitation_Delete(t *testing.T) {
	remote := clienttest.New()
	alice := newParty(t, remote)
	ctx := context.Background()

	inv, err := alice.handshake.CreateOutgoing(ctx, alice.id)
	require.NoError(t, err)
	require.NoError(t, alice.handshake.Delete(ctx, alice.id, inv.ID))
	require.ErrorIs(t, alice.handshake.Delete(ctx, alice.id, inv.ID), common.ErrInvitationNotFound)
}
