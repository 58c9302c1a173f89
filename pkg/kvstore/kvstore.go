// Package kvstore is the persistence gateway: an opaque key-value store that
// holds one JSON document per key.
package kvstore

//go:generate mockgen -source=kvstore.go -destination=mock/gateway.go -package=mock

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("kvstore: key not found")

type Gateway interface {
	// Load returns the stored value, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	// SaveBatch writes every entry or none of them.
	SaveBatch(ctx context.Context, entries map[string][]byte) error
}

// Pinger is implemented by gateways backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NamespaceKey returns "namespace:key", or key alone for an empty namespace.
func NamespaceKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", namespace, key)
}
