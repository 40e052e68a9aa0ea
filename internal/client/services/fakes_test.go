package services

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/chain"
	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/client/wallet"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fake blob store ----

type uploadCall struct {
	payload []byte
	epochs  int
}

type fakeStore struct {
	mu        sync.Mutex
	uploads   []uploadCall
	blobs     map[string][]byte
	uploadErr error
	// noID makes Upload succeed without a blob id.
	noID        bool
	downloadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: map[string][]byte{}}
}

func (f *fakeStore) Upload(_ context.Context, payload []byte, epochs int) (*blobstore.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, uploadCall{payload: bytes.Clone(payload), epochs: epochs})
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if f.noID {
		return &blobstore.UploadResult{}, nil
	}
	id := fmt.Sprintf("blob-%d", len(f.uploads))
	f.blobs[id] = bytes.Clone(payload)
	return &blobstore.UploadResult{BlobID: id, Size: int64(len(payload)), Created: true}, nil
}

func (f *fakeStore) Download(_ context.Context, blobID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	b, ok := f.blobs[blobID]
	if !ok {
		return nil, fmt.Errorf("%w: blob %s: %w", common.ErrTransfer, blobID, common.ErrNotFound)
	}
	return bytes.Clone(b), nil
}

func (f *fakeStore) Exists(_ context.Context, blobID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[blobID]
	return ok
}

func (f *fakeStore) BlobURL(blobID string) string {
	return "https://agg.test/v1/blobs/" + blobID
}

func (f *fakeStore) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

// ---- fake gateway ----

type fakeGateway struct {
	mu      sync.Mutex
	calls   []chain.MoveCall
	waited  []string
	digest  string
	execErr error
	waitErr error
	// block, when set, makes Execute wait until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (g *fakeGateway) Execute(ctx context.Context, _ chain.Signer, call chain.MoveCall) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	block, entered := g.block, g.entered
	g.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if g.execErr != nil {
		return "", g.execErr
	}
	if g.digest == "" {
		return "DIGEST", nil
	}
	return g.digest, nil
}

func (g *fakeGateway) WaitForTransaction(_ context.Context, digest string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.waited = append(g.waited, digest)
	return g.waitErr
}

func (g *fakeGateway) executeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// ---- fake recorder ----

type fakeRecorder struct {
	mu      sync.Mutex
	records []models.Activity
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, a models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, a)
	return r.err
}

// ---- helpers ----

var testContract = chain.Contract{Package: "0xpkg", GlobalRegistry: "0xreg", BadgeRegistry: "0xbadge", Clock: "0x6"}

func testSession(t *testing.T) *wallet.Session {
	t.Helper()
	s, err := wallet.NewSigner(bytes.Repeat([]byte{5}, wallet.SeedSize))
	require.NoError(t, err)
	return wallet.NewSession(s)
}

type stateLog struct {
	mu     sync.Mutex
	states []models.State
}

func (l *stateLog) observe(s models.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, s)
}

func (l *stateLog) get() []models.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.State(nil), l.states...)
}

func bufferLogger() (logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.New(&buf, "debug"), &buf
}
