package blobstore

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/podguild/internal/common"
)

// walrusUploadResponse is the publisher's PUT /v1/blobs response. Exactly one
// of the two branches is expected to be present.
type walrusUploadResponse struct {
	NewlyCreated     *walrusNewlyCreated     `json:"newlyCreated"`
	AlreadyCertified *walrusAlreadyCertified `json:"alreadyCertified"`
}

type walrusNewlyCreated struct {
	BlobObject struct {
		ID          string `json:"id"`
		BlobID      string `json:"blobId"`
		Size        int64  `json:"size"`
		EncodedSize int64  `json:"encodedSize"`
		Storage     *struct {
			EndEpoch int64 `json:"endEpoch"`
		} `json:"storage"`
	} `json:"blobObject"`
	Cost     json.Number `json:"cost"`
	EndEpoch int64       `json:"endEpoch"`
}

type walrusAlreadyCertified struct {
	BlobID   string `json:"blobId"`
	EndEpoch int64  `json:"endEpoch"`
}

// toResult validates the response shape and flattens it into an UploadResult.
func (r *walrusUploadResponse) toResult() (*UploadResult, error) {
	switch {
	case r.NewlyCreated != nil:
		nc := r.NewlyCreated
		if nc.BlobObject.BlobID == "" {
			return nil, fmt.Errorf("%w: newlyCreated without blobId", common.ErrUnexpectedStoreResponse)
		}
		cost := nc.Cost.String()
		if cost == "" {
			cost = "0"
		}
		endEpoch := nc.EndEpoch
		if endEpoch == 0 && nc.BlobObject.Storage != nil {
			endEpoch = nc.BlobObject.Storage.EndEpoch
		}
		return &UploadResult{
			BlobID:      nc.BlobObject.BlobID,
			ObjectID:    nc.BlobObject.ID,
			Size:        nc.BlobObject.Size,
			EncodedSize: nc.BlobObject.EncodedSize,
			Cost:        cost,
			EndEpoch:    endEpoch,
			Created:     true,
		}, nil

	case r.AlreadyCertified != nil:
		ac := r.AlreadyCertified
		if ac.BlobID == "" {
			return nil, fmt.Errorf("%w: alreadyCertified without blobId", common.ErrUnexpectedStoreResponse)
		}
		return &UploadResult{
			BlobID:   ac.BlobID,
			ObjectID: ac.BlobID,
			Cost:     "0",
			EndEpoch: ac.EndEpoch,
		}, nil

	default:
		return nil, fmt.Errorf("%w: neither newlyCreated nor alreadyCertified", common.ErrUnexpectedStoreResponse)
	}
}
