// Package activity stores the local history of terminal flow outcomes and
// the blobs that were uploaded but never referenced on chain.
package activity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/podguild/internal/client/models"
)

type Repository interface {
	// Record inserts a terminal outcome. When a.Orphaned is set, a.BlobID is
	// added to the orphan list in the same transaction.
	Record(ctx context.Context, a models.Activity) error
	// List returns the most recent records first.
	List(ctx context.Context, limit int) ([]models.Activity, error)
	OrphanBlobs(ctx context.Context) ([]OrphanBlob, error)
}

// OrphanBlob is an uploaded blob that no confirmed transaction refers to.
type OrphanBlob struct {
	BlobID    string
	AttemptID string
	CreatedAt time.Time
}
