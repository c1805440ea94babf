package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/samber/lo"
)

// MessageBus posts and fetches envelopes. It base64-encodes and signs bodies
// on the way out and decodes them on the way in; it never decrypts, since
// whether a body is encrypted is decided by the sender.
type MessageBus struct {
	remote  client.Client
	session *AuthSession
	logger  logging.Logger
}

func NewMessageBus(remote client.Client, session *AuthSession, logger logging.Logger) *MessageBus {
	return &MessageBus{remote: remote, session: session, logger: logger}
}

// Post signs the base64 encoding of body with self's key and submits it.
func (b *MessageBus) Post(ctx context.Context, self *identity.Identity, recipient string, body []byte, typ int) (*models.Message, error) {
	payload := base64.StdEncoding.EncodeToString(body)
	sig, err := self.Signer().SignMessage(payload)
	if err != nil {
		return nil, err
	}

	out := client.OutgoingMessage{Recipient: recipient, Type: typ, Payload: payload, Signature: sig}
	m, err := withToken(ctx, b.session, self, func(ctx context.Context, token string) (*models.Message, error) {
		return b.remote.PostMessage(ctx, token, out)
	})
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	m.Body = body
	return m, nil
}

// FetchProcessed returns messages whose processed flag equals processed.
func (b *MessageBus) FetchProcessed(ctx context.Context, self *identity.Identity, processed bool) ([]models.Message, error) {
	return b.fetch(ctx, self, client.MessageQuery{Processed: &processed})
}

// FetchAfter returns messages posted after afterID, or all messages when
// afterID is empty.
func (b *MessageBus) FetchAfter(ctx context.Context, self *identity.Identity, afterID string) ([]models.Message, error) {
	return b.fetch(ctx, self, client.MessageQuery{AfterID: afterID})
}

func (b *MessageBus) fetch(ctx context.Context, self *identity.Identity, q client.MessageQuery) ([]models.Message, error) {
	msgs, err := withToken(ctx, b.session, self, func(ctx context.Context, token string) ([]models.Message, error) {
		return b.remote.Messages(ctx, token, q)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return lo.Map(msgs, func(m models.Message, _ int) models.Message { return b.decode(ctx, m) }), nil
}

// Get returns one message visible to self.
func (b *MessageBus) Get(ctx context.Context, self *identity.Identity, id string) (*models.Message, error) {
	m, err := withToken(ctx, b.session, self, func(ctx context.Context, token string) (*models.Message, error) {
		return b.remote.Message(ctx, token, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	decoded := b.decode(ctx, *m)
	return &decoded, nil
}

// MarkProcessed flips the processed flag. The store does not guarantee the
// flag is durable, so callers must not depend on it for correctness.
func (b *MessageBus) MarkProcessed(ctx context.Context, self *identity.Identity, id string) (bool, error) {
	return withToken(ctx, b.session, self, func(ctx context.Context, token string) (bool, error) {
		return b.remote.ProcessMessage(ctx, token, id, true)
	})
}

// decode fills Body from the base64 payload. A message with a malformed
// payload is kept with a nil Body so it fails later, on its own.
func (b *MessageBus) decode(ctx context.Context, m models.Message) models.Message {
	body, err := base64.StdEncoding.DecodeString(m.Payload)
	if err != nil {
		b.logger.Warn(ctx, "undecodable message payload", "id", m.ID, "sender", m.Sender)
		return m
	}
	m.Body = body
	return m
}
