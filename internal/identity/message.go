package identity

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/dmitrijs2005/walletmeta/internal/common"
)

const messageMagic = "Bitcoin Signed Message:\n"

type signer struct {
	key     *secp256k1.PrivateKey
	address string
}

func (s signer) Address() string { return s.address }

// SignMessage produces a base64 compact recoverable signature over the
// double-SHA256 of the magic-prefixed message.
func (s signer) SignMessage(msg string) (string, error) {
	sig := ecdsa.SignCompact(s.key, messageHash(msg), true)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyMessage recovers the signing key from signature and checks that it
// hashes to address. Failures are reported as common.ErrInvalidSignature.
func VerifyMessage(address, msg, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return common.ErrInvalidSignature
	}
	pub, _, err := ecdsa.RecoverCompact(sig, messageHash(msg))
	if err != nil {
		return common.ErrInvalidSignature
	}
	if AddressFromPublicKey(pub) != address {
		return common.ErrInvalidSignature
	}
	return nil
}

func messageHash(msg string) []byte {
	var buf bytes.Buffer
	writeVarString(&buf, messageMagic)
	writeVarString(&buf, msg)
	first := sha256.Sum256(buf.Bytes())
	second := sha256.Sum256(first[:])
	return second[:]
}

func writeVarString(buf *bytes.Buffer, s string) {
	n := uint64(len(s))
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0xfd)
		_ = binary.Write(buf, binary.LittleEndian, uint16(n))
	case n <= 0xffffffff:
		buf.WriteByte(0xfe)
		_ = binary.Write(buf, binary.LittleEndian, uint32(n))
	default:
		buf.WriteByte(0xff)
		_ = binary.Write(buf, binary.LittleEndian, n)
	}
	buf.WriteString(s)
}
