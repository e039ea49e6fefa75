package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "tracker:"

// Redis stores slots as plain string keys without expiry.
type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.Client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.Client.Set(ctx, redisPrefix+key, value, 0).Err()
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.Client.Del(ctx, redisPrefix+key).Err()
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
