package settings

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps settings in one Redis hash. Used when a shop runs the app
// on a small server with Redis already deployed (REDIS_URL set).
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore stores every setting as a field of the hash named key.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "kiranamitra:settings"
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.HSet(ctx, s.key, key, value).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.HDel(ctx, s.key, keys...).Err()
}
