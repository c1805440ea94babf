package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/walletmeta/internal/client/client/clienttest"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustStore_Idempotence(t *testing.T) {
	remote := clienttest.New()
	p := newParty(t, remote)
	ctx := context.Background()

	for _, id := range []string{"1Bob", "1Carol"} {
		ok, err := p.trust.Add(ctx, p.id, id)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = p.trust.Add(ctx, p.id, id)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	list, err := p.trust.List(ctx, p.id)
	require.NoError(t, err)
	assert.Equal(t, []string{"1Bob", "1Carol"}, list)

	trusted, err := p.trust.IsTrusted(ctx, p.id, "1Bob")
	require.NoError(t, err)
	assert.True(t, trusted)

	ok, err := p.trust.Remove(ctx, p.id, "1Bob")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.trust.Remove(ctx, p.id, "1Bob")
	require.NoError(t, err, "removing an absent id still succeeds")
	assert.True(t, ok)

	trusted, err = p.trust.IsTrusted(ctx, p.id, "1Bob")
	require.NoError(t, err)
	assert.False(t, trusted)
}

func TestTrustStore_EmptyList(t *testing.T) {
	p := newParty(t, clienttest.New())
	list, err := p.trust.List(context.Background(), p.id)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestTrustStore_ErrorsAreDistinguishable(t *testing.T) {
	remote := clienttest.New()
	p := newParty(t, remote)
	ctx := context.Background()

	remote.SetDown(true)
	_, err := p.trust.Add(ctx, p.id, "1Bob")
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
	require.NotErrorIs(t, err, common.ErrAuthFailure)

	remote.SetDown(false)
	remote.RejectNext(2)
	_, err = p.trust.Add(ctx, p.id, "1Bob")
	require.ErrorIs(t, err, common.ErrAuthFailure)
	require.NotErrorIs(t, err, common.ErrRemoteUnavailable)
}
