package services

import (
	"context"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/chain"
	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/client/wallet"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/google/uuid"
)

// DefaultImageEpochs is the retention of pod logos.
const DefaultImageEpochs = 10

// PodService runs the single-transaction flows: create and join pods, post
// jobs and hire candidates. Each one validates, submits once and waits for
// confirmation, failing with the same kinds as the application pipeline.
type PodService struct {
	store       blobstore.Store
	exec        *executor
	contract    chain.Contract
	imageEpochs int
	rec         recorder
	log         logging.Logger
}

type PodOption func(*PodService)

func WithImageEpochs(n int) PodOption {
	return func(s *PodService) {
		if n > 0 {
			s.imageEpochs = n
		}
	}
}

func WithPodRecorder(r ActivityRecorder) PodOption {
	return func(s *PodService) { s.rec.r = r }
}

func WithPodNetwork(network string) PodOption {
	return func(s *PodService) { s.exec.network = network }
}

func NewPodService(store blobstore.Store, gateway chain.Gateway, contract chain.Contract, log logging.Logger, opts ...PodOption) *PodService {
	s := &PodService{
		store:       store,
		exec:        &executor{gateway: gateway},
		contract:    contract,
		imageEpochs: DefaultImageEpochs,
		rec:         recorder{log: log},
		log:         log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreatePod uploads the optional logo and creates the pod. The logo upload is
// best effort: when it fails the pod is created without one.
func (s *PodService) CreatePod(ctx context.Context, session *wallet.Session, form models.PodForm) (*models.TxResult, error) {
	if err := validatePod(session, form); err != nil {
		return nil, err
	}

	var logoURL, blobID string
	if form.Image != nil {
		up, err := s.store.Upload(ctx, form.Image.Data, s.imageEpochs)
		switch {
		case err != nil:
			s.log.Warn(ctx, "pod image upload failed, continuing without logo", "pod", form.Name, "error", err)
		case up == nil || up.BlobID == "":
			s.log.Warn(ctx, "pod image upload returned no blob id, continuing without logo", "pod", form.Name)
		default:
			blobID = up.BlobID
			logoURL = s.store.BlobURL(up.BlobID)
		}
	}

	call := s.contract.CreatePodCall(form.Name, form.Description, form.Category, logoURL)
	res, err := s.execute(ctx, session, call, models.Activity{Kind: models.ActivityCreatePod, BlobID: blobID})
	if res != nil {
		res.LogoURL = logoURL
	}
	return res, err
}

func (s *PodService) JoinPod(ctx context.Context, session *wallet.Session, podID string) (*models.TxResult, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := validateID("pod id", podID); err != nil {
		return nil, err
	}
	return s.execute(ctx, session, s.contract.JoinPodCall(podID), models.Activity{Kind: models.ActivityJoinPod, PodID: podID})
}

func (s *PodService) PostJob(ctx context.Context, session *wallet.Session, form models.JobForm) (*models.TxResult, error) {
	if err := validateJob(session, form); err != nil {
		return nil, err
	}
	return s.execute(ctx, session, s.contract.PostJobCall(form), models.Activity{Kind: models.ActivityPostJob, PodID: form.PodID})
}

func (s *PodService) HireCandidate(ctx context.Context, session *wallet.Session, form models.HireForm) (*models.TxResult, error) {
	if err := validateHire(session, form); err != nil {
		return nil, err
	}
	return s.execute(ctx, session, s.contract.HireCandidateCall(form), models.Activity{Kind: models.ActivityHire, JobID: form.JobID})
}

// execute submits call and waits for it. The result is non-nil whenever a
// digest exists, including on confirmation timeout.
func (s *PodService) execute(ctx context.Context, session *wallet.Session, call chain.MoveCall, act models.Activity) (*models.TxResult, error) {
	log := s.log.With("function", call.Function)

	act.AttemptID = uuid.NewString()
	act.Address = session.Address()

	digest, err := s.exec.submit(ctx, session.Signer, call)
	if err != nil {
		log.Error(ctx, "transaction rejected", "error", err)
		s.finish(ctx, act, err)
		return nil, err
	}

	res := &models.TxResult{Digest: digest, TxURL: s.exec.txURL(digest)}
	act.Digest = digest

	if err := s.exec.confirm(ctx, digest); err != nil {
		log.Warn(ctx, "transaction not confirmed", "digest", digest, "error", err)
		s.finish(ctx, act, err)
		return res, err
	}

	log.Info(ctx, "transaction confirmed", "digest", digest)
	s.finish(ctx, act, nil)
	return res, nil
}

func (s *PodService) finish(ctx context.Context, act models.Activity, err error) {
	act.Status = string(models.StateDone)
	if err != nil {
		act.Status = string(models.StateFailed)
		act.ErrorKind = common.KindOf(err)
		act.Orphaned = act.BlobID != "" && act.Digest == ""
	}
	s.rec.record(ctx, act)
}
