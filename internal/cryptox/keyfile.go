package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/argon2"
)

const keyFileVersion = 1

var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key file")

// KeyMaterial is the pair of private scalars an identity is built from.
type KeyMaterial struct {
	SigningKey    []byte `cbor:"1,keyasint"`
	EncryptionKey []byte `cbor:"2,keyasint"`
}

// Wipe zeroes both keys.
func (k *KeyMaterial) Wipe() {
	common.WipeByteArray(k.SigningKey)
	common.WipeByteArray(k.EncryptionKey)
}

// sealedKeyFile is the on-disk CBOR layout.
type sealedKeyFile struct {
	Version    int    `cbor:"1,keyasint"`
	Salt       []byte `cbor:"2,keyasint"`
	Nonce      []byte `cbor:"3,keyasint"`
	Ciphertext []byte `cbor:"4,keyasint"`
}

// DeriveMasterKey stretches a passphrase into an AES-256 key with Argon2id.
func DeriveMasterKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// SealKeys encrypts km with a key derived from passphrase and returns the
// CBOR-encoded key file.
func SealKeys(km *KeyMaterial, passphrase []byte) ([]byte, error) {
	plaintext, err := cbor.Marshal(km)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(plaintext)

	salt := common.GenerateRandByteArray(16)
	if salt == nil {
		return nil, errors.New("salt generation failed")
	}
	key := DeriveMasterKey(passphrase, salt)
	defer common.WipeByteArray(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return cbor.Marshal(sealedKeyFile{
		Version:    keyFileVersion,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
	})
}

// OpenKeys decodes and decrypts a key file produced by SealKeys.
func OpenKeys(data []byte, passphrase []byte) (*KeyMaterial, error) {
	var f sealedKeyFile
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode key file: %w", err)
	}
	if f.Version != keyFileVersion {
		return nil, fmt.Errorf("unsupported key file version %d", f.Version)
	}

	key := DeriveMasterKey(passphrase, f.Salt)
	defer common.WipeByteArray(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(f.Nonce) != gcm.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	plaintext, err := gcm.Open(nil, f.Nonce, f.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	defer common.WipeByteArray(plaintext)

	km := &KeyMaterial{}
	if err := cbor.Unmarshal(plaintext, km); err != nil {
		return nil, fmt.Errorf("decode key material: %w", err)
	}
	return km, nil
}

// WriteKeyFile seals km and writes it to path with owner-only permissions.
func WriteKeyFile(path string, km *KeyMaterial, passphrase []byte) error {
	data, err := SealKeys(km, passphrase)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ReadKeyFile loads and opens the key file at path.
func ReadKeyFile(path string, passphrase []byte) (*KeyMaterial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return OpenKeys(data, passphrase)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
