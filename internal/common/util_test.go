package common

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(32)
	b := GenerateRandByteArray(32)

	assert.Len(t, a, 32)
	assert.Len(t, b, 32)
	assert.False(t, bytes.Equal(a, b), "two 32-byte draws collided")
	assert.Empty(t, GenerateRandByteArray(0))
}

func TestWipeByteArray(t *testing.T) {
	key := []byte{0xde, 0xad, 0xbe, 0xef}
	WipeByteArray(key)
	assert.Equal(t, []byte{0, 0, 0, 0}, key)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", fmt.Errorf("%w: cover letter is required", ErrValidation), KindValidation},
		{"encryption", fmt.Errorf("%w: %w", ErrEncryption, errors.New("rng")), KindEncryption},
		{"transfer not found", fmt.Errorf("%w: %w", ErrTransfer, ErrNotFound), KindTransfer},
		{"decryption", fmt.Errorf("%w: %w", ErrDecryption, ErrEnvelopeTooShort), KindDecryption},
		{"submission", fmt.Errorf("%w: rejected by user", ErrSubmission), KindSubmission},
		{"timeout wins over submission", fmt.Errorf("%w: %w", ErrSubmission, ErrConfirmationTimeout), KindConfirmationTimeout},
		{"wrong wallet password", fmt.Errorf("%w: wrong password", ErrWalletLocked), KindValidation},
		{"no session", ErrNoSession, KindValidation},
		{"unknown", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
