// Package blobstore transfers opaque byte payloads to and from a
// content-addressed blob store.
//
// Two backends implement Store:
//   - WalrusStore talks to a Walrus publisher (uploads) and aggregator
//     (downloads) over plain HTTP.
//   - S3Store keeps blobs in an S3-compatible bucket under the base64url
//     SHA-256 of their content.
//
// Neither backend retries. Every failure is reported as common.ErrTransfer,
// joined with common.ErrNotFound when the blob does not exist.
package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/cryptox"
)

const (
	// DefaultEpochs is the retention used when the caller passes epochs <= 0.
	DefaultEpochs = 5

	// MaxBlobSize caps downloads: the largest attachment plus its envelope.
	MaxBlobSize = MaxAttachmentSize + cryptox.EnvelopeOverhead
)

// Store is the blob store client contract.
type Store interface {
	// Upload stores payload for the given number of epochs. Both "newly
	// created" and "already certified" store responses are successes.
	Upload(ctx context.Context, payload []byte, epochs int) (*UploadResult, error)

	// Download fetches the raw bytes of a blob.
	Download(ctx context.Context, blobID string) ([]byte, error)

	// Exists probes for a blob. It never fails: any error reads as false.
	Exists(ctx context.Context, blobID string) bool

	// BlobURL returns the deterministic public fetch URL of a blob.
	BlobURL(blobID string) string
}

// UploadResult describes a stored blob. Size and EncodedSize are 0 when the
// store reported the blob as already certified.
type UploadResult struct {
	BlobID      string
	ObjectID    string
	Size        int64
	EncodedSize int64
	Cost        string
	EndEpoch    int64
	// Created is false when identical content already existed.
	Created bool
}

// readBlob reads at most limit bytes of body. A longer body is a transfer
// failure and nothing is returned.
func readBlob(body io.Reader, blobID string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read blob %s: %w", common.ErrTransfer, blobID, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: blob %s exceeds %d bytes", common.ErrTransfer, blobID, limit)
	}
	return data, nil
}
