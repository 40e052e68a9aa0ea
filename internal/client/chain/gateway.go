// Package chain is the client side of the on-chain marketplace contract.
//
// Gateway executes one move call per transaction and waits for it to be
// confirmed; Reader serves the read-only queries behind listings. SuiClient
// implements both over the Sui JSON-RPC API. Gateway errors carry
// common.ErrSubmission or common.ErrConfirmationTimeout.
package chain

import (
	"context"
	"strings"
)

// Signer authorizes transactions on behalf of one address.
type Signer interface {
	Address() string
	// SignTransaction returns the base64 serialized signature of txBytes.
	SignTransaction(txBytes []byte) (string, error)
}

// Gateway submits state-changing calls.
type Gateway interface {
	// Execute builds, signs and submits call. It returns the transaction
	// digest once the node accepted the transaction.
	Execute(ctx context.Context, signer Signer, call MoveCall) (string, error)

	// WaitForTransaction blocks until digest is confirmed or the configured
	// confirmation timeout elapses.
	WaitForTransaction(ctx context.Context, digest string) error
}

// Reader serves read-only object and event queries.
type Reader interface {
	MultiGetObjects(ctx context.Context, ids []string) ([]ObjectData, error)
	GetOwnedObjects(ctx context.Context, owner, structType string) ([]ObjectData, error)
	QueryEvents(ctx context.Context, eventType string, limit int) ([]Event, error)
}

// MoveCall is a single entry-function invocation. Args are JSON values in the
// form accepted by unsafe_moveCall: object ids, addresses and u64 as strings,
// u8 as numbers, vectors as arrays.
type MoveCall struct {
	Package  string
	Module   string
	Function string
	TypeArgs []string
	Args     []any
}

// Target returns the fully qualified "pkg::module::function" name.
func (c MoveCall) Target() string {
	return strings.Join([]string{c.Package, c.Module, c.Function}, "::")
}

// TxURL returns the explorer link of a transaction digest on network.
func TxURL(network, digest string) string {
	if digest == "" {
		return ""
	}
	if network == "" {
		network = "testnet"
	}
	return "https://suiscan.xyz/" + network + "/tx/" + digest
}
