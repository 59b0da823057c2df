// Package kvstore defines the key-value persistence boundary for mapping
// state and provides memory, SQLite, Redis, and NATS JetStream backends.
//
// Keys are namespaced per entity kind by the engine (one key for the mapping
// set, one for the learned set), so different kinds never collide. Values are
// opaque JSON documents; a Set replaces the whole document, so callers never
// observe a half-written mapping set.
package kvstore

import (
	"context"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
)

// Store is the persistence boundary consumed by the engine.
//
// Get returns errors.ErrKeyNotFound (possibly wrapped) when the key is
// absent. Delete on an absent key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// IsNotFound reports whether err indicates an absent key.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}
