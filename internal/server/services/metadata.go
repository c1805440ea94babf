package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/repomanager"
)

// BlobStore persists metadata blobs. Get returns common.ErrorNotFound for an
// address never written.
type BlobStore interface {
	Put(ctx context.Context, blob *models.MetadataBlob) error
	Get(ctx context.Context, address string) (*models.MetadataBlob, error)
}

// PostgresBlobStore keeps blobs in the metadata table.
type PostgresBlobStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostgresBlobStore(db *sql.DB, m repomanager.RepositoryManager) *PostgresBlobStore {
	return &PostgresBlobStore{db: db, repomanager: m}
}

func (s *PostgresBlobStore) Put(ctx context.Context, blob *models.MetadataBlob) error {
	return s.repomanager.Metadata(s.db).Put(ctx, blob)
}

func (s *PostgresBlobStore) Get(ctx context.Context, address string) (*models.MetadataBlob, error) {
	return s.repomanager.Metadata(s.db).Get(ctx, address)
}

// MetadataService guards writes to the address-keyed store. A write is
// accepted when it carries a signed message over the payload by the address,
// or when the caller is authenticated as the address itself.
type MetadataService struct {
	blobs BlobStore
}

func NewMetadataService(blobs BlobStore) *MetadataService {
	return &MetadataService{blobs: blobs}
}

// Put stores payload at address. caller is the authenticated identity, or ""
// for anonymous requests.
func (s *MetadataService) Put(ctx context.Context, caller, address, payload, signature string) error {
	if err := identity.ValidateAddress(address); err != nil {
		return common.ErrorInvalidInput
	}

	if signature != "" {
		if err := identity.VerifyMessage(address, payload, signature); err != nil {
			return common.ErrInvalidSignature
		}
	} else if caller == "" || caller != address {
		return common.ErrorUnauthorized
	}

	if err := s.blobs.Put(ctx, &models.MetadataBlob{Address: address, Payload: payload, Signature: signature}); err != nil {
		return fmt.Errorf("error storing metadata: %w", err)
	}
	return nil
}

// Get reads the blob at address. Metadata is public.
func (s *MetadataService) Get(ctx context.Context, address string) (*models.MetadataBlob, error) {
	return s.blobs.Get(ctx, address)
}
