// Package models defines client-side data models used by the podguild client.
package models

// Attachment is a user-selected file held in memory until it is uploaded.
type Attachment struct {
	// Name is the original file name, informational only.
	Name string
	// MIMEType is the declared content type (e.g. "application/pdf").
	MIMEType string
	// Data holds the raw file bytes.
	Data []byte
}

// Size returns the attachment size in bytes. A nil attachment has size 0.
func (a *Attachment) Size() int64 {
	if a == nil {
		return 0
	}
	return int64(len(a.Data))
}

// Document is a plaintext file produced by the retrieval flow. MIMEType is
// the type asserted by the caller, not one recovered from the ciphertext.
type Document struct {
	BlobID   string
	MIMEType string
	Data     []byte
}
