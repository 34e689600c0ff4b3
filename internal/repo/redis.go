package repo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

const DefaultRedisKey = "scheduled:snapshot"

// RedisStore keeps the snapshot under a single key with no expiry.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) LoadAll(ctx context.Context) ([]model.ScheduledTransaction, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(b)
}

func (s *RedisStore) SaveAll(ctx context.Context, items []model.ScheduledTransaction) error {
	b, err := encodeSnapshot(items, time.Now())
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, b, 0).Err()
}

var _ Persistence = (*RedisStore)(nil)
