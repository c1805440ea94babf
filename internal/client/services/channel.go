package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/client/client"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/cryptox"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
)

// channelInfo binds derived keys to this use.
const channelInfo = "walletmeta/channel/v1"

// SecureChannel encrypts payloads between two identities with a key derived
// from ECDH over their published encryption keys.
type SecureChannel struct {
	remote  client.Client
	session *AuthSession
	self    *identity.Identity
}

func NewSecureChannel(remote client.Client, session *AuthSession, self *identity.Identity) *SecureChannel {
	return &SecureChannel{remote: remote, session: session, self: self}
}

// PublishPublicKey stores our encryption public key at our address. The
// value is public and written unsigned under our own token.
func (c *SecureChannel) PublishPublicKey(ctx context.Context) error {
	pub := c.self.KeyAgreement().PublicKey()
	return c.session.Do(ctx, c.self, func(ctx context.Context, token string) error {
		return c.remote.PutMetadata(ctx, token, c.self.ID(), pub, "")
	})
}

// FetchPublicKey returns the counterpart's published key; ok is false when
// nothing was published.
func (c *SecureChannel) FetchPublicKey(ctx context.Context, counterpart string) (pub string, ok bool, err error) {
	blob, err := c.remote.GetMetadata(ctx, counterpart)
	if errors.Is(err, common.ErrorNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fetch public key of %s: %w", counterpart, err)
	}
	if _, err := identity.ParsePublicKey(blob.Payload); err != nil {
		return "", false, fmt.Errorf("public key of %s: %w", counterpart, err)
	}
	return blob.Payload, true, nil
}

// EncryptFor seals plaintext for the holder of counterpartPublicKey.
func (c *SecureChannel) EncryptFor(counterpartPublicKey string, plaintext []byte) (string, error) {
	key, err := c.sharedKey(counterpartPublicKey)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)
	return cryptox.SealEnvelope(key, plaintext)
}

// DecryptFrom opens an envelope sealed by the holder of
// counterpartPublicKey. Any failure is common.ErrDecryptionFailure.
func (c *SecureChannel) DecryptFrom(counterpartPublicKey string, envelope string) ([]byte, error) {
	key, err := c.sharedKey(counterpartPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailure, err)
	}
	defer common.WipeByteArray(key)
	return cryptox.OpenEnvelope(key, envelope)
}

func (c *SecureChannel) sharedKey(counterpartPublicKey string) ([]byte, error) {
	secret, err := c.self.KeyAgreement().SharedSecret(counterpartPublicKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)
	return cryptox.DeriveKey(secret, channelInfo)
}
