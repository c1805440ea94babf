// Package identity turns wallet key material into an actor on the metadata
// store: a Base58Check address used as the stable id, a Signer for the
// signed-message scheme, and a KeyAgreement for per-contact encryption.
package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160"
)

// addressVersion is the mainnet P2PKH version byte.
const addressVersion byte = 0x00

var (
	ErrInvalidKey     = errors.New("invalid private key")
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidPubKey  = errors.New("invalid public key")
)

// Signer signs messages on behalf of an address.
type Signer interface {
	Address() string
	SignMessage(msg string) (string, error)
}

// KeyAgreement derives pairwise secrets with counterparts.
type KeyAgreement interface {
	// PublicKey is the hex-encoded compressed public key to publish.
	PublicKey() string
	// SharedSecret performs ECDH with a counterpart's published key.
	SharedSecret(counterpartPublicKey string) ([]byte, error)
}

// Identity is immutable once constructed.
type Identity struct {
	id         string
	signing    *secp256k1.PrivateKey
	encryption *secp256k1.PrivateKey
}

// New builds an Identity from two 32-byte private scalars.
func New(signingKey, encryptionKey []byte) (*Identity, error) {
	s, err := parsePrivateKey(signingKey)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	e, err := parsePrivateKey(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	return &Identity{id: AddressFromPublicKey(s.PubKey()), signing: s, encryption: e}, nil
}

// Generate creates an identity from fresh random keys.
func Generate() (*Identity, error) {
	s, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	e, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Identity{id: AddressFromPublicKey(s.PubKey()), signing: s, encryption: e}, nil
}

func (i *Identity) ID() string { return i.id }

func (i *Identity) Signer() Signer { return signer{key: i.signing, address: i.id} }

func (i *Identity) KeyAgreement() KeyAgreement { return agreement{key: i.encryption} }

// SigningKey returns a copy of the raw signing scalar.
func (i *Identity) SigningKey() []byte { return i.signing.Serialize() }

// EncryptionKey returns a copy of the raw encryption scalar.
func (i *Identity) EncryptionKey() []byte { return i.encryption.Serialize() }

// Derive returns the deterministic child identity for a metadata purpose.
// The same parent and purpose always yield the same child.
func (i *Identity) Derive(purpose uint32) (*Identity, error) {
	return New(childKey(i.signing, purpose), childKey(i.encryption, purpose))
}

func childKey(parent *secp256k1.PrivateKey, purpose uint32) []byte {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:], purpose)
	h := sha256.New()
	h.Write(parent.Serialize())
	h.Write([]byte("walletmeta/derive"))
	h.Write(p[:])
	return h.Sum(nil)
}

func parsePrivateKey(b []byte) (*secp256k1.PrivateKey, error) {
	if len(b) != secp256k1.PrivKeyBytesLen {
		return nil, ErrInvalidKey
	}
	k := secp256k1.PrivKeyFromBytes(b)
	if k.Key.IsZero() {
		return nil, ErrInvalidKey
	}
	return k, nil
}

// AddressFromPublicKey is Base58Check(version || RIPEMD160(SHA256(compressed))).
func AddressFromPublicKey(pub *secp256k1.PublicKey) string {
	sha := sha256.Sum256(pub.SerializeCompressed())
	r := ripemd160.New()
	r.Write(sha[:])
	return base58.CheckEncode(r.Sum(nil), addressVersion)
}

// ValidateAddress checks the checksum, version and payload length.
func ValidateAddress(address string) error {
	payload, version, err := base58.CheckDecode(address)
	if err != nil || version != addressVersion || len(payload) != ripemd160.Size {
		return ErrInvalidAddress
	}
	return nil
}

// ParsePublicKey decodes a hex compressed or uncompressed public key.
func ParsePublicKey(s string) (*secp256k1.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidPubKey
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidPubKey
	}
	return pub, nil
}

type agreement struct {
	key *secp256k1.PrivateKey
}

func (a agreement) PublicKey() string {
	return hex.EncodeToString(a.key.PubKey().SerializeCompressed())
}

func (a agreement) SharedSecret(counterpartPublicKey string) ([]byte, error) {
	pub, err := ParsePublicKey(counterpartPublicKey)
	if err != nil {
		return nil, err
	}
	return secp256k1.GenerateSharedSecret(a.key, pub), nil
}
