package storage

import (
	"context"
	"errors"
	"time"

	redisclient "github.com/agentfashion/storefront/pkg/redis"
)

type redisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	StateKey(name string) string
}

// Redis stores state in a shared redis, namespaced per installation scope.
type Redis struct {
	client redisBackend
}

func NewRedis(client *redisclient.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.client.StateKey(key))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.StateKey(key), value, 0)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.StateKey(key))
}
