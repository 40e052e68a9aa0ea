package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/chain"
	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/client/wallet"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/cryptox"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/google/uuid"
)

// DefaultCVEpochs is the retention of uploaded CV envelopes.
const DefaultCVEpochs = 10

// ApplicationService runs the "apply to job" pipeline:
//
//	idle -> validating -> [encrypting -> uploading] -> submitting -> confirming -> done
//
// with failed reachable from every non-terminal state. Each attempt makes at
// most one upload and one submission; nothing is retried.
type ApplicationService struct {
	store    blobstore.Store
	exec     *executor
	contract chain.Contract
	encrypt  Encrypter
	cvEpochs int
	guard    *inFlightGuard
	rec      recorder
	log      logging.Logger
	newID    func() string
}

type ApplicationOption func(*ApplicationService)

// WithEncrypter replaces the envelope encryption, mainly for tests.
func WithEncrypter(e Encrypter) ApplicationOption {
	return func(s *ApplicationService) { s.encrypt = e }
}

func WithCVEpochs(n int) ApplicationOption {
	return func(s *ApplicationService) {
		if n > 0 {
			s.cvEpochs = n
		}
	}
}

// WithSingleFlight rejects an attempt while another one for the same wallet
// and job is still running.
func WithSingleFlight() ApplicationOption {
	return func(s *ApplicationService) { s.guard = newInFlightGuard() }
}

// WithActivityRecorder records every terminal outcome.
func WithActivityRecorder(r ActivityRecorder) ApplicationOption {
	return func(s *ApplicationService) { s.rec.r = r }
}

func WithNetwork(network string) ApplicationOption {
	return func(s *ApplicationService) { s.exec.network = network }
}

func NewApplicationService(store blobstore.Store, gateway chain.Gateway, contract chain.Contract, log logging.Logger, opts ...ApplicationOption) *ApplicationService {
	s := &ApplicationService{
		store:    store,
		exec:     &executor{gateway: gateway},
		contract: contract,
		encrypt:  cryptox.EncryptEnvelope,
		cvEpochs: DefaultCVEpochs,
		log:      log,
		newID:    uuid.NewString,
	}
	s.rec.log = log
	for _, o := range opts {
		o(s)
	}
	return s
}

// attempt tracks one pass through the pipeline.
type attempt struct {
	res     *models.SubmissionResult
	observe StateObserver
	log     logging.Logger
}

func (a *attempt) enter(ctx context.Context, st models.State) {
	a.log.Debug(ctx, "application state", "from", a.res.State, "to", st)
	a.res.State = st
	if a.observe != nil {
		a.observe(st)
	}
}

func (a *attempt) fail(ctx context.Context, err error) (*models.SubmissionResult, error) {
	a.res.FailedAt = a.res.State
	a.enter(ctx, models.StateFailed)

	kind := common.KindOf(err)
	if kind == common.KindConfirmationTimeout {
		a.log.Warn(ctx, "application submitted but not confirmed", "digest", a.res.Digest, "error", err)
	} else {
		a.log.Error(ctx, "application failed", "step", a.res.FailedAt, "kind", kind, "error", err)
	}
	return a.res, err
}

// Submit runs one attempt. The result is never nil: on failure it reports the
// step that failed, the uploaded blob id (if any) and the digest (if the
// transaction was accepted). The returned error carries exactly one failure
// kind from package common.
func (s *ApplicationService) Submit(ctx context.Context, session *wallet.Session, form models.ApplicationForm, observe StateObserver) (*models.SubmissionResult, error) {
	id := s.newID()
	a := &attempt{
		res:     &models.SubmissionResult{AttemptID: id, State: models.StateIdle},
		observe: observe,
		log:     s.log.With("attempt_id", id, "job_id", form.JobID, "pod_id", form.PodID),
	}

	res, err := s.run(ctx, a, session, form)

	status := string(res.State)
	s.rec.record(ctx, models.Activity{
		AttemptID: id,
		Kind:      models.ActivityApply,
		Address:   session.Address(),
		JobID:     form.JobID,
		PodID:     form.PodID,
		Digest:    res.Digest,
		BlobID:    res.BlobID,
		Status:    status,
		ErrorKind: common.KindOf(err),
		Orphaned:  err != nil && res.BlobID != "" && res.Digest == "",
	})
	return res, err
}

func (s *ApplicationService) run(ctx context.Context, a *attempt, session *wallet.Session, form models.ApplicationForm) (*models.SubmissionResult, error) {
	a.enter(ctx, models.StateValidating)
	if err := ctx.Err(); err != nil {
		return a.fail(ctx, fmt.Errorf("%w: %w", common.ErrValidation, err))
	}
	if err := validateApplication(session, form); err != nil {
		return a.fail(ctx, err)
	}

	if s.guard != nil {
		release, ok := s.guard.acquire(attemptKey(session.Address(), form.JobID))
		if !ok {
			return a.fail(ctx, fmt.Errorf("%w: %w", common.ErrValidation, common.ErrAttemptInFlight))
		}
		defer release()
	}

	var encryptedCV string
	if form.CV != nil {
		blobID, err := s.uploadCV(ctx, a, form.CV)
		if err != nil {
			return a.fail(ctx, err)
		}
		encryptedCV = blobID
	}

	a.enter(ctx, models.StateSubmitting)
	call := s.contract.SubmitApplicationCall(chain.ApplicationArgs{
		JobID:           form.JobID,
		PodID:           form.PodID,
		CoverLetter:     form.CoverLetter,
		Portfolio:       form.Contact,
		EncryptedCVBlob: encryptedCV,
	})
	digest, err := s.exec.submit(ctx, session.Signer, call)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.res.Digest = digest
	a.res.TxURL = s.exec.txURL(digest)

	a.enter(ctx, models.StateConfirming)
	if err := s.exec.confirm(ctx, digest); err != nil {
		return a.fail(ctx, err)
	}

	a.enter(ctx, models.StateDone)
	a.log.Info(ctx, "application confirmed", "digest", digest, "blob_id", a.res.BlobID)
	return a.res, nil
}

// uploadCV encrypts the attachment and uploads the envelope once. The
// plaintext never leaves this function.
func (s *ApplicationService) uploadCV(ctx context.Context, a *attempt, cv *models.Attachment) (string, error) {
	a.enter(ctx, models.StateEncrypting)
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrEncryption, err)
	}
	envelope, err := s.encrypt(cv.Data)
	if err != nil {
		if errors.Is(err, common.ErrEncryption) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", common.ErrEncryption, err)
	}

	a.enter(ctx, models.StateUploading)
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrTransfer, err)
	}
	up, err := s.store.Upload(ctx, envelope, s.cvEpochs)
	if err != nil {
		if errors.Is(err, common.ErrTransfer) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", common.ErrTransfer, err)
	}
	if up == nil || up.BlobID == "" {
		return "", fmt.Errorf("%w: %w", common.ErrTransfer, common.ErrUnexpectedStoreResponse)
	}

	a.res.BlobID = up.BlobID
	a.log.Debug(ctx, "cv uploaded", "blob_id", up.BlobID, "envelope_size", len(envelope), "created", up.Created)
	return up.BlobID, nil
}
