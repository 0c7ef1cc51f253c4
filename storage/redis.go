package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every Redis failure of a [RedisStore].
var ErrRedisUnavailable = errors.New("session store redis unavailable")

// RedisStore keeps each namespace as a Redis hash at <prefix>:<key>.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store over redisClient. An empty prefix defaults to "gcs".
// A positive ttl is re-armed on every write.
func NewRedisStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "gcs"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Fetch(ctx context.Context, key string) (map[string]string, error) {
	values, err := s.redis.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (s *RedisStore) Store(ctx context.Context, key string, value map[string]string) error {
	redisKey := s.key(key)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKey)
		if len(value) == 0 {
			return nil
		}
		args := make([]any, 0, len(value)*2)
		for k, v := range value {
			args = append(args, k, v)
		}
		pipe.HSet(ctx, redisKey, args...)
		if s.ttl > 0 {
			pipe.Expire(ctx, redisKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Keys lists the namespaces stored under the prefix.
func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	pattern := s.prefix + ":*"
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		for _, k := range keys {
			out = append(out, k[len(s.prefix)+1:])
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}
