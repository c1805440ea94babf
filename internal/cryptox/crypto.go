// Package cryptox holds the symmetric primitives: the XChaCha20-Poly1305
// envelope used between contacts and for the private contact directory, and
// the passphrase-sealed wallet key file.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// envelopeVersion prefixes every sealed envelope.
const envelopeVersion byte = 1

// KeySize is the symmetric key length used by the envelope AEAD.
const KeySize = chacha20poly1305.KeySize

// DeriveKey expands secret into a KeySize key bound to info with HKDF-SHA256.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	return key, nil
}

// SealEnvelope encrypts plaintext under key and returns the base64 encoding of
// version || nonce || ciphertext. Each call draws a fresh 24-byte nonce, so the
// same key can be reused across messages.
func SealEnvelope(key, plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("cipher creation failed: %w", err)
	}

	buf := make([]byte, 1+aead.NonceSize(), 1+aead.NonceSize()+len(plaintext)+aead.Overhead())
	buf[0] = envelopeVersion
	if _, err := rand.Read(buf[1:]); err != nil {
		return "", fmt.Errorf("nonce generation failed: %w", err)
	}

	out := aead.Seal(buf, buf[1:], plaintext, buf[:1])
	return base64.StdEncoding.EncodeToString(out), nil
}

// OpenEnvelope reverses SealEnvelope. Every format or integrity problem is
// reported as common.ErrDecryptionFailure and no plaintext is returned. The
// base64 decoding is strict, so non-zero padding bits are a format error.
func OpenEnvelope(key []byte, envelope string) ([]byte, error) {
	raw, err := base64.StdEncoding.Strict().DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding", common.ErrDecryptionFailure)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailure, err)
	}

	if len(raw) < 1+aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: envelope too short", common.ErrDecryptionFailure)
	}
	if raw[0] != envelopeVersion {
		return nil, fmt.Errorf("%w: unknown envelope version %d", common.ErrDecryptionFailure, raw[0])
	}

	nonce := raw[1 : 1+aead.NonceSize()]
	plaintext, err := aead.Open(nil, nonce, raw[1+aead.NonceSize():], raw[:1])
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", common.ErrDecryptionFailure)
	}
	return plaintext, nil
}
