package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on a Redis client. Sets are Redis sets,
// scalars are plain string values, and float increments use
// INCRBYFLOAT so concurrent updates commute.
type Redis struct {
	rdb *redis.Client
}

// NewRedis constructs a *Redis on an already-configured client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (s *Redis) AddMember(ctx context.Context, key, member string) error {
	return s.rdb.SAdd(ctx, key, member).Err()
}

func (s *Redis) RemoveMember(ctx context.Context, key, member string) error {
	return s.rdb.SRem(ctx, key, member).Err()
}

func (s *Redis) Members(ctx context.Context, key string) ([]string, error) {
	return s.rdb.SMembers(ctx, key).Result()
}

func (s *Redis) Cardinality(ctx context.Context, key string) (int64, error) {
	return s.rdb.SCard(ctx, key).Result()
}

func (s *Redis) IncrementScalar(ctx context.Context, key string, delta float64) (float64, error) {
	return s.rdb.IncrByFloat(ctx, key, delta).Result()
}

func (s *Redis) GetScalar(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return v, err
}

func (s *Redis) SetScalar(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key, ttl).Err()
}
