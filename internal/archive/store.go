// Package archive persists backtest reports to a pluggable blob store.
package archive

import "context"

// Store is a flat blob store keyed by slash-separated paths.
type Store interface {
	// Put writes a blob under the key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Fetch retrieves the blob stored under the key.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Keys lists every stored key beginning with the prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Remove deletes the blob under the key.
	Remove(ctx context.Context, key string) error

	// Exists reports whether a blob is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
}
