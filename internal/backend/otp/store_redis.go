package otp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"zirrmi/pkg/platform/sentinel"
)

const (
	codeKeyPrefix     = "otp:code:"
	attemptsKeyPrefix = "otp:attempts:"
)

// RedisCodeStore shares outstanding codes between instances. Codes expire with
// the key TTL; the attempt counter lives under a sibling key with the same TTL.
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, codeKeyPrefix+key, code, ttl)
	pipe.Set(ctx, attemptsKeyPrefix+key, 0, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisCodeStore) Get(ctx context.Context, key string) (string, error) {
	code, err := s.client.Get(ctx, codeKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	return code, err
}

func (s *RedisCodeStore) Take(ctx context.Context, key string) (string, error) {
	code, err := s.client.GetDel(ctx, codeKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	s.client.Del(ctx, attemptsKeyPrefix+key)
	return code, nil
}

// IncrAttempts counts against a live code only. The counter inherits the
// code's remaining TTL.
func (s *RedisCodeStore) IncrAttempts(ctx context.Context, key string) (int, error) {
	attemptsKey := attemptsKeyPrefix + key
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, attemptsKey)
	ttl := pipe.PTTL(ctx, codeKeyPrefix+key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	if ttl.Val() <= 0 {
		s.client.Del(ctx, attemptsKey)
		return 0, sentinel.ErrNotFound
	}
	if err := s.client.PExpire(ctx, attemptsKey, ttl.Val()).Err(); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}
