package kvstore

import (
	"context"
	stderrors "errors"

	"github.com/go-redis/redis/v8"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
)

// Redis is a Store backed by a shared Redis instance, for deployments where
// several UI shells read the same mapping state.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. All keys are stored under the given
// prefix (may be empty).
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// OpenRedis connects to addr and verifies the connection with a ping.
func OpenRedis(ctx context.Context, addr, password string, db int, prefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.WrapTransient(err, "kvstore", "OpenRedis", "ping")
	}
	return NewRedis(client, prefix), nil
}

func (r *Redis) fullKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

// Get retrieves the value for key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.WrapNotFound(errors.ErrKeyNotFound, "kvstore", "Get", "redis get "+key)
	}
	if err != nil {
		return nil, errors.WrapTransient(err, "kvstore", "Get", "redis get "+key)
	}
	return value, nil
}

// Set stores the value for key without expiry. Mapping state never expires
// automatically.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.fullKey(key), value, 0).Err(); err != nil {
		return errors.WrapTransient(err, "kvstore", "Set", "redis set "+key)
	}
	return nil
}

// Delete removes key. Absent keys are a no-op.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.fullKey(key)).Err(); err != nil {
		return errors.WrapTransient(err, "kvstore", "Delete", "redis del "+key)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
