// Package services contains the application services of the podguild client:
// the job application pipeline, CV retrieval and the pod/job flows. Services
// receive their collaborators through constructors and hold no global state.
package services

import (
	"context"

	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/logging"
)

// Encrypter turns a plaintext attachment into a self-contained envelope.
type Encrypter func(plaintext []byte) ([]byte, error)

// Decrypter reverses an Encrypter.
type Decrypter func(envelope []byte) ([]byte, error)

// StateObserver receives every pipeline state transition, in order.
type StateObserver func(models.State)

// ActivityRecorder persists terminal outcomes.
type ActivityRecorder interface {
	Record(ctx context.Context, a models.Activity) error
}

// recorder wraps an optional ActivityRecorder. Failures are logged and never
// change the outcome being recorded.
type recorder struct {
	r   ActivityRecorder
	log logging.Logger
}

func (r recorder) record(ctx context.Context, a models.Activity) {
	if r.r == nil {
		return
	}
	// history is written even when the caller gave up
	ctx = context.WithoutCancel(ctx)
	if err := r.r.Record(ctx, a); err != nil {
		r.log.Warn(ctx, "failed to record activity", "attempt_id", a.AttemptID, "error", err)
	}
}
