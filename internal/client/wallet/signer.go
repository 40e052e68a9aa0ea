// Package wallet manages the local Ed25519 key that authorizes marketplace
// transactions: the password-protected keystore file, Sui address
// derivation, transaction signing and the in-memory session.
package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	// SeedSize is the length of an Ed25519 private seed.
	SeedSize = ed25519.SeedSize

	// ed25519Flag is the signature scheme prefix used in addresses and
	// serialized signatures.
	ed25519Flag byte = 0x00
)

// transactionIntent prefixes transaction bytes before hashing:
// scope TransactionData, version V0, app id Sui.
var transactionIntent = []byte{0, 0, 0}

// Ed25519Signer signs transactions with an in-memory private key.
type Ed25519Signer struct {
	priv    ed25519.PrivateKey
	address string
}

// NewSigner builds a signer from a 32-byte seed.
func NewSigner(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Ed25519Signer{priv: priv, address: Address(pub)}, nil
}

func (s *Ed25519Signer) Address() string { return s.address }

func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.priv.Public().(ed25519.PublicKey)
}

// SignTransaction signs the intent digest of txBytes and returns the
// base64 serialized signature flag || signature || public key.
func (s *Ed25519Signer) SignTransaction(txBytes []byte) (string, error) {
	if len(txBytes) == 0 {
		return "", errors.New("empty transaction")
	}
	digest := IntentDigest(txBytes)
	sig := ed25519.Sign(s.priv, digest[:])

	out := make([]byte, 0, 1+ed25519.SignatureSize+ed25519.PublicKeySize)
	out = append(out, ed25519Flag)
	out = append(out, sig...)
	out = append(out, s.PublicKey()...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Address derives the Sui address of an Ed25519 public key:
// 0x || hex(blake2b-256(flag || pubkey)).
func Address(pub ed25519.PublicKey) string {
	h := blake2b.Sum256(append([]byte{ed25519Flag}, pub...))
	return "0x" + hex.EncodeToString(h[:])
}

// IntentDigest is the message actually signed for txBytes.
func IntentDigest(txBytes []byte) [32]byte {
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent...)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}

// VerifyTransaction checks a serialized signature produced by SignTransaction
// and returns the signer's address.
func VerifyTransaction(txBytes []byte, serialized string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || raw[0] != ed25519Flag {
		return "", errors.New("not an ed25519 signature")
	}
	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])

	digest := IntentDigest(txBytes)
	if !ed25519.Verify(pub, digest[:], sig) {
		return "", errors.New("signature mismatch")
	}
	return Address(pub), nil
}
