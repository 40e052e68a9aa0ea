package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/netx"
)

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// notFound reports whether the node could not find the requested item yet.
func (e *RPCError) notFound() bool {
	m := strings.ToLower(e.Message)
	return strings.Contains(m, "could not find") || strings.Contains(m, "not found")
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

type rpcClient struct {
	url    string
	http   *http.Client
	nextID atomic.Uint64
}

func newRPCClient(url string, hc *http.Client) *rpcClient {
	return &rpcClient{url: url, http: hc}
}

// call performs one JSON-RPC request and decodes the result into out. Node
// errors are returned as *RPCError; an undecodable body as
// common.ErrMalformedResponse.
func (c *rpcClient) call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if err := netx.CheckResponse(resp); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("%s: %w", method, errors.Join(common.ErrMalformedResponse, err))
	}
	if rr.Error != nil {
		return rr.Error
	}
	if out == nil {
		return nil
	}
	if len(rr.Result) == 0 || string(rr.Result) == "null" {
		return fmt.Errorf("%s: %w: empty result", method, common.ErrMalformedResponse)
	}
	if err := json.Unmarshal(rr.Result, out); err != nil {
		return fmt.Errorf("%s: %w", method, errors.Join(common.ErrMalformedResponse, err))
	}
	return nil
}
