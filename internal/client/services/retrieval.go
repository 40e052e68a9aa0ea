package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/cryptox"
	"github.com/dmitrijs2005/podguild/internal/logging"
)

// DefaultCVMIMEType is assumed when the caller does not declare one.
const DefaultCVMIMEType = "application/pdf"

// RetrievalService downloads and opens CV envelopes.
type RetrievalService struct {
	store   blobstore.Store
	decrypt Decrypter
	log     logging.Logger
}

func NewRetrievalService(store blobstore.Store, log logging.Logger) *RetrievalService {
	return &RetrievalService{store: store, decrypt: cryptox.DecryptEnvelope, log: log}
}

// RetrieveCV downloads blobID and decrypts it. A missing blob fails with
// common.ErrTransfer joined with common.ErrNotFound; a corrupt or tampered
// envelope with common.ErrDecryption. The document's MIME type is the
// declared one: the envelope does not carry it.
func (s *RetrievalService) RetrieveCV(ctx context.Context, blobID, declaredMIME string) (*models.Document, error) {
	if err := validateID("blob id", blobID); err != nil {
		return nil, err
	}
	if declaredMIME == "" {
		declaredMIME = DefaultCVMIMEType
	}

	envelope, err := s.download(ctx, blobID)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.decrypt(envelope)
	if err != nil {
		s.log.Warn(ctx, "cv decryption failed", "blob_id", blobID, "size", len(envelope), "error", err)
		if errors.Is(err, common.ErrDecryption) {
			return nil, fmt.Errorf("blob %s: %w", blobID, err)
		}
		return nil, fmt.Errorf("%w: blob %s: %w", common.ErrDecryption, blobID, err)
	}

	if sniffed := blobstore.DetectMIME(plaintext); !mimeCompatible(blobstore.BaseMIME(declaredMIME), sniffed) {
		s.log.Warn(ctx, "declared cv type differs from content", "blob_id", blobID, "declared", declaredMIME, "detected", sniffed)
	}

	return &models.Document{BlobID: blobID, MIMEType: declaredMIME, Data: plaintext}, nil
}

// FetchAttachment downloads an unencrypted blob such as a pod logo.
func (s *RetrievalService) FetchAttachment(ctx context.Context, blobID string) ([]byte, error) {
	if err := validateID("blob id", blobID); err != nil {
		return nil, err
	}
	return s.download(ctx, blobID)
}

func (s *RetrievalService) download(ctx context.Context, blobID string) ([]byte, error) {
	data, err := s.store.Download(ctx, blobID)
	if err != nil {
		if errors.Is(err, common.ErrTransfer) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrTransfer, err)
	}
	return data, nil
}

// mimeCompatible is lenient: generic types and office formats (which sniff
// as zip or ole containers) never count as mismatches.
func mimeCompatible(declared, sniffed string) bool {
	switch {
	case declared == sniffed:
		return true
	case declared == "application/octet-stream", sniffed == "application/octet-stream":
		return true
	case declared == "application/msword", declared == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return true
	default:
		return false
	}
}
