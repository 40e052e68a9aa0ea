// Package common defines shared constants and sentinel errors used across
// client layers of podguild. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Failure kinds. Every core operation fails with exactly one of these,
	// usually joined with a more specific cause.
	ErrValidation          = errors.New("validation error")
	ErrEncryption          = errors.New("encryption failed")
	ErrTransfer            = errors.New("transfer failed")
	ErrDecryption          = errors.New("decryption failed")
	ErrSubmission          = errors.New("submission failed")
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")

	// Blob store errors.
	ErrNotFound                = errors.New("not found")
	ErrUnexpectedStoreResponse = errors.New("unexpected blob store response")

	// Envelope errors.
	ErrEnvelopeTooShort = errors.New("envelope too short")

	// Gateway errors.
	ErrMalformedResponse = errors.New("malformed gateway response")

	// Session / wallet errors.
	ErrNoSession       = errors.New("no active wallet session")
	ErrWalletLocked    = errors.New("wallet locked: wrong password or corrupted keystore")
	ErrAttemptInFlight = errors.New("another submission for this job is in flight")
)

// KindOf reports which failure kind err belongs to. Kinds are checked from the
// most to the least specific, so an error that carries both a confirmation
// timeout and a submission marker is reported as a timeout. A locked wallet or
// a missing session is the caller's input problem and reads as validation.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation), errors.Is(err, ErrWalletLocked), errors.Is(err, ErrNoSession):
		return KindValidation
	case errors.Is(err, ErrEncryption):
		return KindEncryption
	case errors.Is(err, ErrDecryption):
		return KindDecryption
	case errors.Is(err, ErrTransfer):
		return KindTransfer
	case errors.Is(err, ErrConfirmationTimeout):
		return KindConfirmationTimeout
	case errors.Is(err, ErrSubmission):
		return KindSubmission
	default:
		return KindUnknown
	}
}
