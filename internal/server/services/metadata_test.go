package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetadataService(t *testing.T) *MetadataService {
	t.Helper()
	return NewMetadataService(NewPostgresBlobStore(newSQLMockDB(t), &fakeRepoManager{s: newMemStore()}))
}

func TestMetadataService_SignedWrite(t *testing.T) {
	s := newMetadataService(t)
	ctx := context.Background()
	owner, err := identity.Generate()
	require.NoError(t, err)

	sig, err := owner.Signer().SignMessage("doc")
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "", owner.ID(), "doc", sig))

	blob, err := s.Get(ctx, owner.ID())
	require.NoError(t, err)
	assert.Equal(t, "doc", blob.Payload)
	assert.Equal(t, sig, blob.Signature)
}

func TestMetadataService_SignedWriteByOtherKey(t *testing.T) {
	s := newMetadataService(t)
	owner, err := identity.Generate()
	require.NoError(t, err)
	other, err := identity.Generate()
	require.NoError(t, err)

	sig, err := other.Signer().SignMessage("doc")
	require.NoError(t, err)

	err = s.Put(context.Background(), other.ID(), owner.ID(), "doc", sig)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestMetadataService_UnsignedWriteNeedsOwnerToken(t *testing.T) {
	s := newMetadataService(t)
	ctx := context.Background()
	owner, other := newAddress(t), newAddress(t)

	assert.ErrorIs(t, s.Put(ctx, "", owner, "pub", ""), common.ErrorUnauthorized)
	assert.ErrorIs(t, s.Put(ctx, other, owner, "pub", ""), common.ErrorUnauthorized)
	require.NoError(t, s.Put(ctx, owner, owner, "pub", ""))

	blob, err := s.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "pub", blob.Payload)
}

func TestMetadataService_GetMissing(t *testing.T) {
	s := newMetadataService(t)

	_, err := s.Get(context.Background(), newAddress(t))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMetadataService_InvalidAddress(t *testing.T) {
	s := newMetadataService(t)

	assert.ErrorIs(t, s.Put(context.Background(), "x", "x", "p", ""), common.ErrorInvalidInput)
}
