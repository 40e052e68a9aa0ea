// Package common contains shared constants and sentinel errors used across
// podguild components.
package common

// AppName is used for the data directory, the database file and log attributes.
const AppName = "podguild"

// Error kind names returned by KindOf. They are stable and meant for
// presentation code that needs to branch on the failure kind.
const (
	KindValidation          = "validation"
	KindEncryption          = "encryption"
	KindTransfer            = "transfer"
	KindDecryption          = "decryption"
	KindSubmission          = "submission"
	KindConfirmationTimeout = "confirmation_timeout"
	KindUnknown             = "unknown"
)
