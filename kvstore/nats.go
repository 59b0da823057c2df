package kvstore

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/natsclient"
)

// DefaultNATSBucket is the JetStream KV bucket holding mapping state.
const DefaultNATSBucket = "surveymap_state"

// NATS is the production Store, backed by a JetStream key-value bucket so
// mapping state survives restarts and is shared across UI shells.
type NATS struct {
	kv *natsclient.KVStore
}

// NewNATS creates or binds the bucket and wraps it as a Store.
func NewNATS(ctx context.Context, client *natsclient.Client, bucket string) (*NATS, error) {
	if client == nil {
		return nil, errors.WrapInvalid(natsclient.ErrNotConnected, "kvstore", "NewNATS", "nil client")
	}
	if bucket == "" {
		bucket = DefaultNATSBucket
	}

	kvBucket, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Survey label mapping state",
		History:     10, // Keep last 10 versions for recovery
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "kvstore", "NewNATS", "create KV bucket")
	}

	return &NATS{kv: client.NewKVStore(kvBucket)}, nil
}

// Get retrieves the value for key.
func (n *NATS) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(ctx, key)
	if err != nil {
		if natsclient.IsKVNotFoundError(err) {
			return nil, errors.WrapNotFound(errors.ErrKeyNotFound, "kvstore", "Get", "nats get "+key)
		}
		return nil, errors.WrapTransient(err, "kvstore", "Get", "nats get "+key)
	}
	return entry.Value, nil
}

// Set stores the value for key through the CAS update loop, so a concurrent
// writer from a second UI shell cannot interleave a half-replaced document.
func (n *NATS) Set(ctx context.Context, key string, value []byte) error {
	err := n.kv.UpdateWithRetry(ctx, key, func([]byte) ([]byte, error) {
		return value, nil
	})
	if err != nil {
		return errors.WrapTransient(err, "kvstore", "Set", "nats update "+key)
	}
	return nil
}

// Delete removes key. Absent keys are a no-op.
func (n *NATS) Delete(ctx context.Context, key string) error {
	if err := n.kv.Delete(ctx, key); err != nil {
		return errors.WrapTransient(err, "kvstore", "Delete", "nats delete "+key)
	}
	return nil
}
