package clientstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const CLIENT_STORE_PREFIX = "client:"

type RedisStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore keeps entries under prefix with the given TTL; a zero TTL
// keeps them until removed.
func NewRedisStore(redisClient *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = CLIENT_STORE_PREFIX
	}
	return &RedisStore{redis: redisClient, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.redis.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return decode(raw, dst)
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	payload, err := encode(value)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.prefix+key, string(payload), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
