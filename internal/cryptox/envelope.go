package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/podguild/internal/common"
)

// Envelope layout: nonce (12 bytes) || AES-256-GCM ciphertext with tag || raw key (32 bytes).
// The layout is shared with the web client and must not change.
const (
	NonceSize = 12
	KeySize   = 32
	TagSize   = 16

	// MinEnvelopeSize is the smallest byte count that can hold a nonce and a key.
	MinEnvelopeSize = NonceSize + KeySize

	// EnvelopeOverhead is the number of bytes an envelope adds to its plaintext.
	EnvelopeOverhead = NonceSize + TagSize + KeySize

	// EncryptedMIMEType is the content type attached to uploaded envelopes.
	EncryptedMIMEType = "application/octet-stream"
)

// EncryptEnvelope encrypts plaintext with a freshly generated 256-bit key and
// 96-bit nonce and returns the self-contained envelope. Keys and nonces are
// never reused across calls.
func EncryptEnvelope(plaintext []byte) ([]byte, error) {
	key := common.GenerateRandByteArray(KeySize)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: init cipher: %w", common.ErrEncryption, err)
	}

	nonce := common.GenerateRandByteArray(NonceSize)

	out := make([]byte, 0, len(plaintext)+EnvelopeOverhead)
	out = append(out, nonce...)
	out = aesgcm.Seal(out, nonce, plaintext, nil)
	out = append(out, key...)

	return out, nil
}

// DecryptEnvelope splits an envelope into nonce, ciphertext and key and
// decrypts it. Envelopes shorter than MinEnvelopeSize are rejected before the
// key is touched. Every failure wraps common.ErrDecryption and returns no
// plaintext.
func DecryptEnvelope(envelope []byte) ([]byte, error) {
	if len(envelope) < MinEnvelopeSize {
		return nil, fmt.Errorf("%w: %w: %d bytes, need at least %d", common.ErrDecryption, common.ErrEnvelopeTooShort, len(envelope), MinEnvelopeSize)
	}

	nonce := envelope[:NonceSize]
	key := envelope[len(envelope)-KeySize:]
	ciphertext := envelope[NonceSize : len(envelope)-KeySize]

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: import key: %w", common.ErrDecryption, err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open envelope: %w", common.ErrDecryption, err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
