package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis maps the Store contract directly onto redis string commands.
// Values never expire; durability depends on the server's persistence
// configuration.
type Redis struct {
	Client *redis.Client
}

func NewRedis(addr string) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (s *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
	return s.Client.Set(ctx, key, value, 0).Err()
}

func (s *Redis) Clear(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}
