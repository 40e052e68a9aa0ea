package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/client/wallet"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/cryptox"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppService(store *fakeStore, gw *fakeGateway, opts ...ApplicationOption) *ApplicationService {
	return NewApplicationService(store, gw, testContract, logging.Discard(), opts...)
}

func validForm() models.ApplicationForm {
	return models.ApplicationForm{JobID: "0xjob", PodID: "0xpod", CoverLetter: "I am a good fit"}
}

func TestSubmit_ThreeByteCV(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{digest: "DIG3"}
	svc := newAppService(store, gw, WithNetwork("testnet"))
	states := &stateLog{}

	form := validForm()
	form.CV = &models.Attachment{Name: "cv.txt", MIMEType: "text/plain", Data: []byte("abc")}

	res, err := svc.Submit(context.Background(), testSession(t), form, states.observe)
	require.NoError(t, err)

	// one upload of a 12+3+16+32 byte envelope
	require.Len(t, store.uploads, 1)
	up := store.uploads[0]
	assert.Len(t, up.payload, 63)
	assert.Equal(t, DefaultCVEpochs, up.epochs)
	assert.False(t, bytes.Contains(up.payload, []byte("abc")), "plaintext must not be uploaded")

	plain, err := cryptox.DecryptEnvelope(up.payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), plain)

	// one submission referencing the uploaded blob in the encrypted slot
	require.Len(t, gw.calls, 1)
	call := gw.calls[0]
	assert.Equal(t, "submit_application", call.Function)
	assert.Equal(t, []any{"0xreg", "0xjob", "0xpod", "I am a good fit", "", false, "", false, "blob-1", true, "0x6"}, call.Args)
	assert.Equal(t, []string{"DIG3"}, gw.waited)

	assert.Equal(t, models.StateDone, res.State)
	assert.Equal(t, "DIG3", res.Digest)
	assert.Equal(t, "blob-1", res.BlobID)
	assert.Equal(t, "https://suiscan.xyz/testnet/tx/DIG3", res.TxURL)
	assert.NotEmpty(t, res.AttemptID)

	assert.Equal(t, []models.State{
		models.StateValidating, models.StateEncrypting, models.StateUploading,
		models.StateSubmitting, models.StateConfirming, models.StateDone,
	}, states.get())
}

func TestSubmit_WithoutCV(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{}
	svc := newAppService(store, gw)
	states := &stateLog{}

	form := validForm()
	form.Contact = "me@example.com"

	res, err := svc.Submit(context.Background(), testSession(t), form, states.observe)
	require.NoError(t, err)
	assert.Zero(t, store.uploadCount())
	assert.Empty(t, res.BlobID)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, []any{"0xreg", "0xjob", "0xpod", "I am a good fit", "", false, "me@example.com", true, "", false, "0x6"}, gw.calls[0].Args)
	assert.Equal(t, []models.State{
		models.StateValidating, models.StateSubmitting, models.StateConfirming, models.StateDone,
	}, states.get())
}

func TestSubmit_ValidationFailuresDoNoIO(t *testing.T) {
	sess := func(t *testing.T) *wallet.Session { return testSession(t) }
	tests := []struct {
		name    string
		session func(t *testing.T) *wallet.Session
		mutate  func(f *models.ApplicationForm)
	}{
		{"no session", func(*testing.T) *wallet.Session { return nil }, func(*models.ApplicationForm) {}},
		{"session without signer", func(*testing.T) *wallet.Session { return &wallet.Session{} }, func(*models.ApplicationForm) {}},
		{"blank cover letter", sess, func(f *models.ApplicationForm) { f.CoverLetter = "  \n\t" }},
		{"missing job", sess, func(f *models.ApplicationForm) { f.JobID = "" }},
		{"missing pod", sess, func(f *models.ApplicationForm) { f.PodID = "" }},
		{"contact too long", sess, func(f *models.ApplicationForm) { f.Contact = strings.Repeat("x", maxContactLength+1) }},
		{"cv too large", sess, func(f *models.ApplicationForm) {
			f.CV = &models.Attachment{MIMEType: "application/pdf", Data: make([]byte, blobstore.MaxAttachmentSize+1)}
		}},
		{"cv wrong type", sess, func(f *models.ApplicationForm) {
			f.CV = &models.Attachment{MIMEType: "image/png", Data: []byte{1}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			gw := &fakeGateway{}
			states := &stateLog{}
			form := validForm()
			tt.mutate(&form)

			res, err := newAppService(store, gw).Submit(context.Background(), tt.session(t), form, states.observe)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, common.KindValidation, common.KindOf(err))
			assert.Equal(t, models.StateFailed, res.State)
			assert.Equal(t, models.StateValidating, res.FailedAt)
			assert.Zero(t, store.uploadCount())
			assert.Zero(t, gw.executeCount())
			assert.Equal(t, []models.State{models.StateValidating, models.StateFailed}, states.get())
		})
	}
}

func TestSubmit_EncryptionFailure(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{}
	svc := newAppService(store, gw, WithEncrypter(func([]byte) ([]byte, error) {
		return nil, errors.New("no entropy")
	}))

	form := validForm()
	form.CV = &models.Attachment{MIMEType: "application/pdf", Data: []byte("%PDF")}

	res, err := svc.Submit(context.Background(), testSession(t), form, nil)
	require.ErrorIs(t, err, common.ErrEncryption)
	assert.Equal(t, common.KindEncryption, common.KindOf(err))
	assert.Equal(t, models.StateEncrypting, res.FailedAt)
	assert.Zero(t, store.uploadCount())
	assert.Zero(t, gw.executeCount())
}

func TestSubmit_UploadFailureBlocksSubmission(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = errors.New("connection reset")
	gw := &fakeGateway{}
	rec := &fakeRecorder{}
	svc := newAppService(store, gw, WithActivityRecorder(rec))

	form := validForm()
	form.CV = &models.Attachment{MIMEType: "application/pdf", Data: []byte("%PDF")}

	res, err := svc.Submit(context.Background(), testSession(t), form, nil)
	require.ErrorIs(t, err, common.ErrTransfer)
	assert.Equal(t, common.KindTransfer, common.KindOf(err))
	assert.Equal(t, models.StateUploading, res.FailedAt)
	assert.Empty(t, res.BlobID)
	assert.Equal(t, 1, store.uploadCount(), "upload must not be retried")
	assert.Zero(t, gw.executeCount())

	require.Len(t, rec.records, 1)
	assert.Equal(t, common.KindTransfer, rec.records[0].ErrorKind)
	assert.False(t, rec.records[0].Orphaned)
}

func TestSubmit_UploadWithoutBlobID(t *testing.T) {
	store := newFakeStore()
	store.noID = true
	gw := &fakeGateway{}

	form := validForm()
	form.CV = &models.Attachment{MIMEType: "application/pdf", Data: []byte("%PDF")}

	_, err := newAppService(store, gw).Submit(context.Background(), testSession(t), form, nil)
	require.ErrorIs(t, err, common.ErrTransfer)
	require.ErrorIs(t, err, common.ErrUnexpectedStoreResponse)
	assert.Zero(t, gw.executeCount())
}

func TestSubmit_SubmissionFailureOrphansBlob(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{execErr: errors.New("MoveAbort(EJobClosed)")}
	rec := &fakeRecorder{}
	svc := newAppService(store, gw, WithActivityRecorder(rec))

	form := validForm()
	form.CV = &models.Attachment{MIMEType: "application/pdf", Data: []byte("%PDF")}

	res, err := svc.Submit(context.Background(), testSession(t), form, nil)
	require.ErrorIs(t, err, common.ErrSubmission)
	assert.Equal(t, common.KindSubmission, common.KindOf(err))
	assert.Contains(t, err.Error(), "MoveAbort(EJobClosed)")
	assert.Equal(t, models.StateSubmitting, res.FailedAt)
	assert.Equal(t, "blob-1", res.BlobID)
	assert.Empty(t, res.Digest)
	assert.Equal(t, 1, gw.executeCount())
	assert.Empty(t, gw.waited)

	require.Len(t, rec.records, 1)
	got := rec.records[0]
	assert.True(t, got.Orphaned)
	assert.Equal(t, "blob-1", got.BlobID)
	assert.Equal(t, string(models.StateFailed), got.Status)
	assert.Equal(t, models.ActivityApply, got.Kind)
	assert.Equal(t, res.AttemptID, got.AttemptID)
}

func TestSubmit_ConfirmationTimeout(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{digest: "SLOW", waitErr: errors.New("deadline exceeded")}
	rec := &fakeRecorder{}
	logger, buf := bufferLogger()
	svc := NewApplicationService(store, gw, testContract, logger, WithActivityRecorder(rec))

	res, err := svc.Submit(context.Background(), testSession(t), validForm(), nil)
	require.ErrorIs(t, err, common.ErrConfirmationTimeout)
	assert.Equal(t, common.KindConfirmationTimeout, common.KindOf(err))
	assert.Equal(t, models.StateConfirming, res.FailedAt)
	assert.Equal(t, "SLOW", res.Digest, "digest is kept so the user can check it later")
	assert.NotEmpty(t, res.TxURL)
	assert.Contains(t, buf.String(), "submitted but not confirmed")

	require.Len(t, rec.records, 1)
	assert.Equal(t, "SLOW", rec.records[0].Digest)
	assert.False(t, rec.records[0].Orphaned)
}

func TestSubmit_FailedOnChainKeepsSubmissionKind(t *testing.T) {
	gw := &fakeGateway{waitErr: errors.Join(common.ErrSubmission, errors.New("InsufficientGas"))}
	res, err := newAppService(newFakeStore(), gw).Submit(context.Background(), testSession(t), validForm(), nil)
	require.ErrorIs(t, err, common.ErrSubmission)
	assert.Equal(t, common.KindSubmission, common.KindOf(err))
	assert.Equal(t, models.StateConfirming, res.FailedAt)
}

func TestSubmit_CancelledBeforeUpload(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := newAppService(store, gw, WithEncrypter(func(p []byte) ([]byte, error) {
		cancel()
		return cryptox.EncryptEnvelope(p)
	}))
	form := validForm()
	form.CV = &models.Attachment{MIMEType: "application/pdf", Data: []byte("%PDF")}

	res, err := svc.Submit(ctx, testSession(t), form, nil)
	require.ErrorIs(t, err, common.ErrTransfer)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.StateUploading, res.FailedAt)
	assert.Zero(t, store.uploadCount())
	assert.Zero(t, gw.executeCount())
}

func TestSubmit_RecorderFailureIsIgnored(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db locked")}
	res, err := newAppService(newFakeStore(), &fakeGateway{}, WithActivityRecorder(rec)).
		Submit(context.Background(), testSession(t), validForm(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StateDone, res.State)
	assert.Len(t, rec.records, 1)
}

func TestSubmit_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{block: release, entered: make(chan struct{}, 1)}
	svc := newAppService(newFakeStore(), gw, WithSingleFlight())
	session := testSession(t)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Submit(context.Background(), session, validForm(), nil)
	}()
	<-gw.entered

	// same wallet and job while the first attempt is parked in Execute
	res, err := svc.Submit(context.Background(), session, validForm(), nil)
	require.ErrorIs(t, err, common.ErrValidation)
	require.ErrorIs(t, err, common.ErrAttemptInFlight)
	assert.Equal(t, models.StateValidating, res.FailedAt)
	assert.Equal(t, 1, gw.executeCount())

	gw.mu.Lock()
	gw.block, gw.entered = nil, nil
	gw.mu.Unlock()

	other := validForm()
	other.JobID = "0xother"
	_, err = svc.Submit(context.Background(), session, other, nil)
	require.NoError(t, err, "a different job is not blocked")

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	_, err = svc.Submit(context.Background(), session, validForm(), nil)
	require.NoError(t, err, "key is released once the attempt ends")
	assert.Equal(t, 3, gw.executeCount())
}

func TestSubmit_WithoutSingleFlightAllowsConcurrentAttempts(t *testing.T) {
	gw := &fakeGateway{}
	svc := newAppService(newFakeStore(), gw)
	session := testSession(t)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), session, validForm(), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, gw.executeCount())
}
