package chain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultGasBudget      = 50_000_000
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = time.Second

	maxOwnedPages = 10
	ownedPageSize = 50
)

// SuiClient implements Gateway and Reader over the Sui JSON-RPC API.
type SuiClient struct {
	rpc            *rpcClient
	log            logging.Logger
	gasBudget      uint64
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

type Option func(*SuiClient)

func WithGasBudget(mist uint64) Option {
	return func(c *SuiClient) { c.gasBudget = mist }
}

// WithConfirmation sets the total wait bound and the polling interval of
// WaitForTransaction.
func WithConfirmation(timeout, poll time.Duration) Option {
	return func(c *SuiClient) {
		c.confirmTimeout = timeout
		c.pollInterval = poll
	}
}

func NewSuiClient(rpcURL string, httpClient *http.Client, log logging.Logger, opts ...Option) *SuiClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &SuiClient{
		rpc:            newRPCClient(rpcURL, httpClient),
		log:            log,
		gasBudget:      DefaultGasBudget,
		confirmTimeout: DefaultConfirmTimeout,
		pollInterval:   DefaultPollInterval,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Execute builds the transaction on the node with unsafe_moveCall, signs it
// locally and submits it. It makes exactly one submission.
func (c *SuiClient) Execute(ctx context.Context, signer Signer, call MoveCall) (string, error) {
	if signer == nil {
		return "", fmt.Errorf("%w: %w", common.ErrSubmission, common.ErrNoSession)
	}

	typeArgs := call.TypeArgs
	if typeArgs == nil {
		typeArgs = []string{}
	}
	args := call.Args
	if args == nil {
		args = []any{}
	}

	var built moveCallResult
	err := c.rpc.call(ctx, "unsafe_moveCall", []any{
		signer.Address(),
		call.Package,
		call.Module,
		call.Function,
		typeArgs,
		args,
		nil,
		strconv.FormatUint(c.gasBudget, 10),
		nil,
	}, &built)
	if err != nil {
		return "", fmt.Errorf("%w: build %s: %w", common.ErrSubmission, call.Function, err)
	}

	txBytes, err := built.decode()
	if err != nil {
		return "", fmt.Errorf("%w: build %s: %w", common.ErrSubmission, call.Function, err)
	}

	sig, err := signer.SignTransaction(txBytes)
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %w", common.ErrSubmission, call.Function, err)
	}

	var res txBlockResponse
	err = c.rpc.call(ctx, "sui_executeTransactionBlock", []any{
		base64.StdEncoding.EncodeToString(txBytes),
		[]string{sig},
		map[string]bool{"showEffects": true},
		"WaitForEffectsCert",
	}, &res)
	if err != nil {
		return "", fmt.Errorf("%w: execute %s: %w", common.ErrSubmission, call.Function, err)
	}
	if err := res.validate(); err != nil {
		return "", fmt.Errorf("%w: execute %s: %w", common.ErrSubmission, call.Function, err)
	}
	if msg, failed := res.failure(); failed {
		return "", fmt.Errorf("%w: %s: %s", common.ErrSubmission, call.Function, msg)
	}

	c.log.Debug(ctx, "transaction submitted", "function", call.Target(), "digest", res.Digest)
	return res.Digest, nil
}

// WaitForTransaction polls sui_getTransactionBlock until the transaction is
// found. Running out of time, or the caller cancelling ctx, yields
// common.ErrConfirmationTimeout; the transaction may still land later.
func (c *SuiClient) WaitForTransaction(ctx context.Context, digest string) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	b := retry.WithMaxDuration(c.confirmTimeout, retry.NewConstant(c.pollInterval))

	attempts := 0
	err := retry.Do(waitCtx, b, func(ctx context.Context) error {
		attempts++
		var res txBlockResponse
		err := c.rpc.call(ctx, "sui_getTransactionBlock", []any{digest, map[string]bool{"showEffects": true}}, &res)
		if err != nil {
			var rpcErr *RPCError
			if errors.As(err, &rpcErr) && !rpcErr.notFound() {
				c.log.Debug(ctx, "confirmation poll failed", "digest", digest, "error", err)
			}
			return retry.RetryableError(err)
		}
		if err := res.validate(); err != nil {
			return retry.RetryableError(err)
		}
		if msg, failed := res.failure(); failed {
			return fmt.Errorf("%w: transaction %s failed: %s", common.ErrSubmission, digest, msg)
		}
		return nil
	})

	switch {
	case err == nil:
		c.log.Debug(ctx, "transaction confirmed", "digest", digest, "polls", attempts)
		return nil
	case errors.Is(err, common.ErrSubmission):
		return err
	default:
		return fmt.Errorf("%w: %s after %d polls: %w", common.ErrConfirmationTimeout, digest, attempts, err)
	}
}

func (c *SuiClient) MultiGetObjects(ctx context.Context, ids []string) ([]ObjectData, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []objectResponse
	err := c.rpc.call(ctx, "sui_multiGetObjects", []any{ids, objectOptions()}, &res)
	if err != nil {
		return nil, err
	}
	return collectObjects(res)
}

// GetOwnedObjects returns owner's objects of structType, following cursors
// for at most maxOwnedPages pages.
func (c *SuiClient) GetOwnedObjects(ctx context.Context, owner, structType string) ([]ObjectData, error) {
	query := map[string]any{
		"filter":  map[string]string{"StructType": structType},
		"options": objectOptions(),
	}

	var out []ObjectData
	var cursor *string
	for range maxOwnedPages {
		var page ownedObjectsPage
		if err := c.rpc.call(ctx, "suix_getOwnedObjects", []any{owner, query, cursor, ownedPageSize}, &page); err != nil {
			return nil, err
		}
		objs, err := collectObjects(page.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, objs...)
		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}

// QueryEvents returns the most recent events of eventType, newest first.
func (c *SuiClient) QueryEvents(ctx context.Context, eventType string, limit int) ([]Event, error) {
	var page eventsPage
	err := c.rpc.call(ctx, "suix_queryEvents", []any{map[string]string{"MoveEventType": eventType}, nil, limit, true}, &page)
	if err != nil {
		return nil, err
	}
	for i := range page.Data {
		if err := page.Data[i].validate(); err != nil {
			return nil, err
		}
	}
	return page.Data, nil
}

func objectOptions() map[string]bool {
	return map[string]bool{"showContent": true, "showType": true, "showOwner": true}
}

// collectObjects drops deleted or missing objects and validates the rest.
func collectObjects(res []objectResponse) ([]ObjectData, error) {
	out := make([]ObjectData, 0, len(res))
	for _, r := range res {
		if r.Data == nil {
			continue
		}
		if err := r.Data.validate(); err != nil {
			return nil, err
		}
		out = append(out, *r.Data)
	}
	return out, nil
}
