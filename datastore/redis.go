package datastore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a Redis server, for deployments where many
// workers should share one schema cache.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects a store to the given Redis options. Keys are
// namespaced under "norm:schema:".
func NewRedis(opt *redis.Options) *Redis {
	return &Redis{
		client: redis.NewClient(opt),
		prefix: "norm:schema:",
	}
}

// Ping verifies the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Exists(ctx context.Context, key string) bool {
	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	return err == nil && n > 0
}

func (r *Redis) Read(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, ErrNotFound
	}
	return val, nil
}

func (r *Redis) Write(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}
