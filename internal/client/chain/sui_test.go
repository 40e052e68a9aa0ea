package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake node ----

type rpcHandler func(params []json.RawMessage) (any, *RPCError)

type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]rpcHandler
	calls    map[string]int
}

func newFakeNode(t *testing.T) (*fakeNode, *httptest.Server) {
	t.Helper()
	n := &fakeNode{handlers: map[string]rpcHandler{}, calls: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(srv.Close)
	return n, srv
}

func (n *fakeNode) on(method string, h rpcHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     uint64            `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	h := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if h == nil {
		resp["error"] = &RPCError{Code: -32601, Message: "method not found"}
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	_ = json.NewEncoder(w).Encode(resp)
}

type fakeSigner struct {
	addr    string
	signed  [][]byte
	signErr error
}

func (s *fakeSigner) Address() string { return s.addr }

func (s *fakeSigner) SignTransaction(txBytes []byte) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.signed = append(s.signed, txBytes)
	return "c2lnbmF0dXJl", nil
}

func effects(digest, status, errMsg string) map[string]any {
	st := map[string]any{"status": status}
	if errMsg != "" {
		st["error"] = errMsg
	}
	return map[string]any{"digest": digest, "effects": map[string]any{"status": st}}
}

var txBytes = []byte{0, 1, 2, 3, 4}

func moveCallOK(params []json.RawMessage) (any, *RPCError) {
	return map[string]any{"txBytes": base64.StdEncoding.EncodeToString(txBytes)}, nil
}

func testCall() MoveCall {
	return MoveCall{Package: "0xpkg", Module: ModuleMarket, Function: "join_pod", Args: []any{"0xpod", "0x6"}}
}

// ---- Execute ----

func TestExecute_Success(t *testing.T) {
	node, srv := newFakeNode(t)

	node.on("unsafe_moveCall", func(p []json.RawMessage) (any, *RPCError) {
		assert.Len(t, p, 9)
		var signer, pkg, module, fn, budget string
		assert.NoError(t, json.Unmarshal(p[0], &signer))
		assert.NoError(t, json.Unmarshal(p[1], &pkg))
		assert.NoError(t, json.Unmarshal(p[2], &module))
		assert.NoError(t, json.Unmarshal(p[3], &fn))
		assert.NoError(t, json.Unmarshal(p[7], &budget))
		assert.Equal(t, "0xme", signer)
		assert.Equal(t, "0xpkg", pkg)
		assert.Equal(t, ModuleMarket, module)
		assert.Equal(t, "join_pod", fn)
		assert.Equal(t, "1234", budget)
		assert.JSONEq(t, `["0xpod","0x6"]`, string(p[5]))
		return moveCallOK(p)
	})
	node.on("sui_executeTransactionBlock", func(p []json.RawMessage) (any, *RPCError) {
		var tx string
		var sigs []string
		assert.NoError(t, json.Unmarshal(p[0], &tx))
		assert.NoError(t, json.Unmarshal(p[1], &sigs))
		assert.Equal(t, base64.StdEncoding.EncodeToString(txBytes), tx)
		assert.Equal(t, []string{"c2lnbmF0dXJl"}, sigs)
		return effects("DIGEST1", "success", ""), nil
	})

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard(), WithGasBudget(1234))
	signer := &fakeSigner{addr: "0xme"}

	digest, err := c.Execute(context.Background(), signer, testCall())
	require.NoError(t, err)
	assert.Equal(t, "DIGEST1", digest)
	assert.Equal(t, [][]byte{txBytes}, signer.signed)
	assert.Equal(t, 1, node.count("sui_executeTransactionBlock"))
}

func TestExecute_Failures(t *testing.T) {
	tests := []struct {
		name      string
		build     rpcHandler
		exec      rpcHandler
		signErr   error
		wantMsg   string
		malformed bool
	}{
		{
			name: "build rejected",
			build: func([]json.RawMessage) (any, *RPCError) {
				return nil, &RPCError{Code: -32000, Message: "Insufficient gas"}
			},
			wantMsg: "Insufficient gas",
		},
		{
			name:      "build without tx bytes",
			build:     func([]json.RawMessage) (any, *RPCError) { return map[string]any{}, nil },
			malformed: true,
		},
		{
			name:    "sign failure",
			build:   moveCallOK,
			signErr: errors.New("hsm offline"),
			wantMsg: "hsm offline",
		},
		{
			name:  "execution rejected",
			build: moveCallOK,
			exec: func([]json.RawMessage) (any, *RPCError) {
				return nil, &RPCError{Code: -32002, Message: "Transaction validator signing failed"}
			},
			wantMsg: "Transaction validator signing failed",
		},
		{
			name:  "effects failure",
			build: moveCallOK,
			exec: func([]json.RawMessage) (any, *RPCError) {
				return effects("D", "failure", "MoveAbort(EJobClosed, 3)"), nil
			},
			wantMsg: "MoveAbort(EJobClosed, 3)",
		},
		{
			name:      "missing digest",
			build:     moveCallOK,
			exec:      func([]json.RawMessage) (any, *RPCError) { return map[string]any{"effects": nil}, nil },
			malformed: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, srv := newFakeNode(t)
			node.on("unsafe_moveCall", tt.build)
			if tt.exec != nil {
				node.on("sui_executeTransactionBlock", tt.exec)
			}
			c := NewSuiClient(srv.URL, srv.Client(), logging.Discard())

			_, err := c.Execute(context.Background(), &fakeSigner{addr: "0xme", signErr: tt.signErr}, testCall())
			require.ErrorIs(t, err, common.ErrSubmission)
			assert.Equal(t, common.KindSubmission, common.KindOf(err))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			if tt.malformed {
				assert.ErrorIs(t, err, common.ErrMalformedResponse)
			}
			assert.LessOrEqual(t, node.count("sui_executeTransactionBlock"), 1)
		})
	}
}

func TestExecute_NoSigner(t *testing.T) {
	node, srv := newFakeNode(t)
	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard())

	_, err := c.Execute(context.Background(), nil, testCall())
	require.ErrorIs(t, err, common.ErrSubmission)
	require.ErrorIs(t, err, common.ErrNoSession)
	assert.Zero(t, node.count("unsafe_moveCall"))
}

func TestExecute_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard())
	_, err := c.Execute(context.Background(), &fakeSigner{addr: "0xme"}, testCall())
	require.ErrorIs(t, err, common.ErrSubmission)
	assert.Contains(t, err.Error(), "rate limited")
}

// ---- WaitForTransaction ----

func TestWait_ConfirmsAfterNotFound(t *testing.T) {
	node, srv := newFakeNode(t)
	polls := 0
	node.on("sui_getTransactionBlock", func(p []json.RawMessage) (any, *RPCError) {
		polls++
		if polls < 3 {
			return nil, &RPCError{Code: -32602, Message: "Could not find the referenced transaction [TransactionDigest(D)]."}
		}
		return effects("D", "success", ""), nil
	})

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard(), WithConfirmation(2*time.Second, 5*time.Millisecond))
	require.NoError(t, c.WaitForTransaction(context.Background(), "D"))
	assert.Equal(t, 3, node.count("sui_getTransactionBlock"))
}

func TestWait_Timeout(t *testing.T) {
	node, srv := newFakeNode(t)
	node.on("sui_getTransactionBlock", func([]json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: -32602, Message: "Could not find the referenced transaction"}
	})

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard(), WithConfirmation(60*time.Millisecond, 10*time.Millisecond))
	start := time.Now()
	err := c.WaitForTransaction(context.Background(), "DIGEST9")
	require.ErrorIs(t, err, common.ErrConfirmationTimeout)
	assert.NotErrorIs(t, err, common.ErrSubmission)
	assert.Contains(t, err.Error(), "DIGEST9")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.GreaterOrEqual(t, node.count("sui_getTransactionBlock"), 2)
}

func TestWait_FailedEffects(t *testing.T) {
	node, srv := newFakeNode(t)
	node.on("sui_getTransactionBlock", func([]json.RawMessage) (any, *RPCError) {
		return effects("D", "failure", "InsufficientGas"), nil
	})

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard(), WithConfirmation(time.Second, 5*time.Millisecond))
	err := c.WaitForTransaction(context.Background(), "D")
	require.ErrorIs(t, err, common.ErrSubmission)
	assert.Contains(t, err.Error(), "InsufficientGas")
	assert.Equal(t, 1, node.count("sui_getTransactionBlock"))
}

func TestWait_CallerCancel(t *testing.T) {
	node, srv := newFakeNode(t)
	node.on("sui_getTransactionBlock", func([]json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: -32602, Message: "not found"}
	})

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard(), WithConfirmation(time.Minute, 10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	err := c.WaitForTransaction(ctx, "D")
	require.ErrorIs(t, err, common.ErrConfirmationTimeout)
}

// ---- Reader ----

func TestMultiGetObjects_SkipsMissing(t *testing.T) {
	node, srv := newFakeNode(t)
	node.on("sui_multiGetObjects", func(p []json.RawMessage) (any, *RPCError) {
		assert.JSONEq(t, `["0xa","0xb"]`, string(p[0]))
		return []any{
			map[string]any{"data": map[string]any{"objectId": "0xa", "type": "T", "content": map[string]any{"dataType": "moveObject", "fields": map[string]any{"name": "A"}}}},
			map[string]any{"error": map[string]any{"code": "deleted"}},
		}, nil
	})

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard())
	objs, err := c.MultiGetObjects(context.Background(), []string{"0xa", "0xb"})
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "0xa", objs[0].ObjectID)

	objs, err = c.MultiGetObjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, objs)
	assert.Equal(t, 1, node.count("sui_multiGetObjects"))
}

func TestMultiGetObjects_Malformed(t *testing.T) {
	node, srv := newFakeNode(t)
	node.on("sui_multiGetObjects", func([]json.RawMessage) (any, *RPCError) {
		return []any{map[string]any{"data": map[string]any{"objectId": "0xa"}}}, nil
	})
	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard())
	_, err := c.MultiGetObjects(context.Background(), []string{"0xa"})
	require.ErrorIs(t, err, common.ErrMalformedResponse)
}

func TestGetOwnedObjects_Paginates(t *testing.T) {
	node, srv := newFakeNode(t)
	node.on("suix_getOwnedObjects", func(p []json.RawMessage) (any, *RPCError) {
		obj := func(id string) map[string]any {
			return map[string]any{"data": map[string]any{"objectId": id, "content": map[string]any{"fields": map[string]any{}}}}
		}
		if string(p[2]) == "null" {
			return map[string]any{"data": []any{obj("0x1")}, "nextCursor": "c1", "hasNextPage": true}, nil
		}
		assert.Equal(t, `"c1"`, string(p[2]))
		return map[string]any{"data": []any{obj("0x2")}, "nextCursor": nil, "hasNextPage": false}, nil
	})

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard())
	objs, err := c.GetOwnedObjects(context.Background(), "0xme", "0xpkg::dolphguild::Pod")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "0x2", objs[1].ObjectID)
	assert.Equal(t, 2, node.count("suix_getOwnedObjects"))
}

func TestQueryEvents(t *testing.T) {
	node, srv := newFakeNode(t)
	node.on("suix_queryEvents", func(p []json.RawMessage) (any, *RPCError) {
		assert.JSONEq(t, `{"MoveEventType":"0xpkg::dolphguild::PodCreatedEvent"}`, string(p[0]))
		assert.Equal(t, "true", string(p[3]))
		return map[string]any{"data": []any{
			map[string]any{"type": "0xpkg::dolphguild::PodCreatedEvent", "parsedJson": map[string]any{"pod_id": "0xp"}},
		}}, nil
	})

	c := NewSuiClient(srv.URL, srv.Client(), logging.Discard())
	events, err := c.QueryEvents(context.Background(), "0xpkg::dolphguild::PodCreatedEvent", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "0xp", fieldString(events[0].ParsedJSON, "pod_id"))
}

func TestTxURL(t *testing.T) {
	assert.Equal(t, "https://suiscan.xyz/testnet/tx/abc", TxURL("testnet", "abc"))
	assert.Equal(t, "https://suiscan.xyz/mainnet/tx/abc", TxURL("mainnet", "abc"))
	assert.Equal(t, "https://suiscan.xyz/testnet/tx/abc", TxURL("", "abc"))
	assert.Empty(t, TxURL("testnet", ""))
}
