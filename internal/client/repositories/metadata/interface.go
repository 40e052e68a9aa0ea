// Package metadata is a small key/value store for client settings that must
// survive restarts, such as the active wallet address.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyActiveAddress = "active_address"
	KeyKeystorePath  = "keystore_path"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
}
