package client

import (
	"context"

	"github.com/dmitrijs2005/walletmeta/internal/client/models"
)

// RemoteInvitation is the store's invitation record. Inviter is the address
// that created it, Contact the acceptor once known.
type RemoteInvitation struct {
	ID      string
	Inviter string
	Contact string
}

// Blob is a metadata value read back from the store.
type Blob struct {
	Payload   string
	Signature string
}

// MessageQuery selects messages either by processed flag or after a cursor.
// Setting both is rejected by the store.
type MessageQuery struct {
	Processed *bool
	AfterID   string
}

// OutgoingMessage is what a sender submits; the store assigns the id.
type OutgoingMessage struct {
	Recipient string
	Type      int
	Payload   string
	Signature string
}

// Client is the remote metadata store contract. Authenticated calls take the
// bearer token explicitly so the caller owns token caching and renewal.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	GetNonce(ctx context.Context) (string, error)
	GetToken(ctx context.Context, mdid, nonce, signature string) (string, error)

	TrustedList(ctx context.Context, token string) ([]string, error)
	IsTrusted(ctx context.Context, token, mdid string) (bool, error)
	AddTrusted(ctx context.Context, token, mdid string) (bool, error)
	RemoveTrusted(ctx context.Context, token, mdid string) (bool, error)

	PostMessage(ctx context.Context, token string, m OutgoingMessage) (*models.Message, error)
	Messages(ctx context.Context, token string, q MessageQuery) ([]models.Message, error)
	Message(ctx context.Context, token, id string) (*models.Message, error)
	ProcessMessage(ctx context.Context, token, id string, processed bool) (bool, error)

	CreateInvitation(ctx context.Context, token string) (*RemoteInvitation, error)
	ReadInvitation(ctx context.Context, token, id string) (*RemoteInvitation, error)
	AcceptInvitation(ctx context.Context, token, id string) (*RemoteInvitation, error)
	ConsumeInvitation(ctx context.Context, token, id string) (*RemoteInvitation, error)
	DeleteInvitation(ctx context.Context, token, id string) error

	// PutMetadata writes payload at address. An empty token is allowed when
	// signature is set.
	PutMetadata(ctx context.Context, token, address, payload, signature string) error
	// GetMetadata returns common.ErrorNotFound when nothing is stored.
	GetMetadata(ctx context.Context, address string) (*Blob, error)
}
