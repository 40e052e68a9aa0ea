package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/chain"
	"github.com/dmitrijs2005/podguild/internal/client/config"
	"github.com/dmitrijs2005/podguild/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	uploadErr error
}

func (m *memStore) Upload(_ context.Context, payload []byte, _ int) (*blobstore.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	id := fmt.Sprintf("blob-%d", len(m.blobs)+1)
	m.blobs[id] = bytes.Clone(payload)
	return &blobstore.UploadResult{BlobID: id, Size: int64(len(payload)), Created: true}, nil
}

func (m *memStore) Download(_ context.Context, blobID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[blobID]
	if !ok {
		return nil, fmt.Errorf("%w: %w", common.ErrTransfer, common.ErrNotFound)
	}
	return bytes.Clone(b), nil
}

func (m *memStore) Exists(_ context.Context, blobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[blobID]
	return ok
}

func (m *memStore) BlobURL(blobID string) string {
	return "https://agg.test/v1/blobs/" + blobID
}

type stubGateway struct {
	mu      sync.Mutex
	calls   []chain.MoveCall
	execErr error
	waitErr error
}

func (g *stubGateway) Execute(_ context.Context, signer chain.Signer, call chain.MoveCall) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if signer == nil {
		return "", common.ErrNoSession
	}
	g.calls = append(g.calls, call)
	if g.execErr != nil {
		return "", g.execErr
	}
	return fmt.Sprintf("DIGEST%d", len(g.calls)), nil
}

func (g *stubGateway) WaitForTransaction(context.Context, string) error {
	return g.waitErr
}

func (g *stubGateway) last() chain.MoveCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

type stubReader struct {
	events  map[string][]chain.Event
	objects map[string]chain.ObjectData
	owned   map[string][]chain.ObjectData
}

func (r *stubReader) MultiGetObjects(_ context.Context, ids []string) ([]chain.ObjectData, error) {
	var out []chain.ObjectData
	for _, id := range ids {
		if o, ok := r.objects[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *stubReader) GetOwnedObjects(_ context.Context, _ string, structType string) ([]chain.ObjectData, error) {
	return r.owned[structType], nil
}

func (r *stubReader) QueryEvents(_ context.Context, eventType string, _ int) ([]chain.Event, error) {
	return r.events[eventType], nil
}

func jsonFields(t *testing.T, kv map[string]any) map[string]json.RawMessage {
	t.Helper()
	out := make(map[string]json.RawMessage, len(kv))
	for k, v := range kv {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		out[k] = b
	}
	return out
}

func moveObject(t *testing.T, id string, kv map[string]any) chain.ObjectData {
	return chain.ObjectData{ObjectID: id, Content: &chain.MoveContent{Fields: jsonFields(t, kv)}}
}

// harness runs the real command tree against in-memory backends and a
// temporary data directory that persists across runs.
type harness struct {
	store   *memStore
	gateway *stubGateway
	reader  *stubReader
	dataDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(PasswordEnv, "correct horse")
	return &harness{
		store:   &memStore{blobs: map[string][]byte{}},
		gateway: &stubGateway{},
		reader:  &stubReader{},
		dataDir: t.TempDir(),
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer

	c := newCommands(func(ctx context.Context, cfg *config.Config, _ *cobra.Command) (*App, error) {
		db, err := repomanager.InitDatabase(ctx, filepath.Join(cfg.DataDir, repomanager.DBFileName))
		if err != nil {
			return nil, err
		}
		b := backends{store: h.store, gateway: h.gateway, reader: h.reader}
		return newApp(cfg, logging.Discard(), db, b, strings.NewReader(stdin), &out), nil
	})
	t.Cleanup(func() { _ = c.closeApp() })

	root := c.root()
	root.SetArgs(append(args, "--data-dir", h.dataDir))
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
