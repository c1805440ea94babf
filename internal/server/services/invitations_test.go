package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationService_Lifecycle(t *testing.T) {
	s := NewInvitationService(newSQLMockDB(t), &fakeRepoManager{s: newMemStore()})
	ctx := context.Background()

	inv, err := s.Create(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, inv.ID)

	_, err = s.Consume(ctx, inv.ID, "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound, "pending invitation cannot be consumed")

	accepted, err := s.Accept(ctx, inv.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", accepted.Contact)

	// same acceptor again is harmless
	_, err = s.Accept(ctx, inv.ID, "bob")
	require.NoError(t, err)

	_, err = s.Accept(ctx, inv.ID, "eve")
	assert.ErrorIs(t, err, common.ErrorConflict)

	_, err = s.Consume(ctx, inv.ID, "eve")
	assert.ErrorIs(t, err, common.ErrorNotFound, "only the inviter consumes")

	got, err := s.Consume(ctx, inv.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Contact)

	_, err = s.Consume(ctx, inv.ID, "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Read(ctx, inv.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInvitationService_AcceptOwnInvitation(t *testing.T) {
	s := NewInvitationService(newSQLMockDB(t), &fakeRepoManager{s: newMemStore()})
	ctx := context.Background()

	inv, err := s.Create(ctx, "alice")
	require.NoError(t, err)

	_, err = s.Accept(ctx, inv.ID, "alice")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestInvitationService_AcceptUnknown(t *testing.T) {
	s := NewInvitationService(newSQLMockDB(t), &fakeRepoManager{s: newMemStore()})

	_, err := s.Accept(context.Background(), "missing", "bob")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInvitationService_Delete(t *testing.T) {
	s := NewInvitationService(newSQLMockDB(t), &fakeRepoManager{s: newMemStore()})
	ctx := context.Background()

	inv, err := s.Create(ctx, "alice")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, inv.ID, "bob"), common.ErrorNotFound)
	require.NoError(t, s.Delete(ctx, inv.ID, "alice"))

	_, err = s.Read(ctx, inv.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
