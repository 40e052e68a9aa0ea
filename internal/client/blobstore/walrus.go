package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/dmitrijs2005/podguild/internal/netx"
)

const blobsPath = "/v1/blobs"

// WalrusStore is a Store backed by a Walrus publisher and aggregator.
type WalrusStore struct {
	publisherURL  string
	aggregatorURL string
	httpClient    *http.Client
	auth          *PublisherAuth
	defaultEpochs int
	maxBlobSize   int64
	log           logging.Logger
}

// WalrusOption customizes a WalrusStore.
type WalrusOption func(*WalrusStore)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) WalrusOption {
	return func(s *WalrusStore) { s.httpClient = c }
}

// WithDefaultEpochs sets the retention used when Upload is called with epochs <= 0.
func WithDefaultEpochs(n int) WalrusOption {
	return func(s *WalrusStore) {
		if n > 0 {
			s.defaultEpochs = n
		}
	}
}

// WithMaxBlobSize lowers or raises the download cap (MaxBlobSize by default).
func WithMaxBlobSize(n int64) WalrusOption {
	return func(s *WalrusStore) {
		if n > 0 {
			s.maxBlobSize = n
		}
	}
}

// WithPublisherAuth makes every upload carry a freshly minted bearer token.
func WithPublisherAuth(a *PublisherAuth) WalrusOption {
	return func(s *WalrusStore) { s.auth = a }
}

func NewWalrusStore(publisherURL, aggregatorURL string, log logging.Logger, opts ...WalrusOption) *WalrusStore {
	s := &WalrusStore{
		publisherURL:  strings.TrimRight(publisherURL, "/"),
		aggregatorURL: strings.TrimRight(aggregatorURL, "/"),
		httpClient:    http.DefaultClient,
		defaultEpochs: DefaultEpochs,
		maxBlobSize:   MaxBlobSize,
		log:           log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *WalrusStore) Upload(ctx context.Context, payload []byte, epochs int) (*UploadResult, error) {
	if epochs <= 0 {
		epochs = s.defaultEpochs
	}

	u := s.publisherURL + blobsPath + "?epochs=" + strconv.Itoa(epochs)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build upload request: %w", common.ErrTransfer, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	if s.auth != nil {
		token, err := s.auth.Token(epochs, int64(len(payload)))
		if err != nil {
			return nil, fmt.Errorf("%w: sign upload token: %w", common.ErrTransfer, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: upload: %w", common.ErrTransfer, err)
	}
	defer resp.Body.Close()

	if err := netx.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("%w: upload: %w", common.ErrTransfer, err)
	}

	var body walrusUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode upload response: %w", common.ErrTransfer, errors.Join(common.ErrUnexpectedStoreResponse, err))
	}

	result, err := body.toResult()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrTransfer, err)
	}

	s.log.Debug(ctx, "blob stored",
		"blob_id", result.BlobID, "created", result.Created, "size", result.Size, "end_epoch", result.EndEpoch)

	return result, nil
}

func (s *WalrusStore) Download(ctx context.Context, blobID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BlobURL(blobID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build download request for blob %s: %w", common.ErrTransfer, blobID, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download blob %s: %w", common.ErrTransfer, blobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: blob %s: %w", common.ErrTransfer, blobID, common.ErrNotFound)
	}
	if err := netx.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("%w: download blob %s: %w", common.ErrTransfer, blobID, err)
	}

	return readBlob(resp.Body, blobID, s.maxBlobSize)
}

// Exists issues a HEAD request. A network failure reads as "does not exist",
// so false negatives are possible.
func (s *WalrusStore) Exists(ctx context.Context, blobID string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.BlobURL(blobID), nil)
	if err != nil {
		s.log.Warn(ctx, "blob existence check failed", "blob_id", blobID, "error", err)
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warn(ctx, "blob existence check failed", "blob_id", blobID, "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (s *WalrusStore) BlobURL(blobID string) string {
	return s.aggregatorURL + blobsPath + "/" + url.PathEscape(blobID)
}
