package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func receiptKey(executionID string) string {
	return fmt.Sprintf("receipt:%s", executionID)
}

func (c *RedisCache) StoreReceipt(ctx context.Context, r Receipt) error {
	if r.ExecutionID == "" {
		return errors.New("execution id must not be empty")
	}
	r.ExecutedAt = r.ExecutedAt.UTC()

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, receiptKey(r.ExecutionID), b, c.ttl).Err()
}

func (c *RedisCache) GetReceipt(ctx context.Context, executionID string) (Receipt, error) {
	b, err := c.rdb.Get(ctx, receiptKey(executionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Receipt{}, ErrReceiptNotFound
	}
	if err != nil {
		return Receipt{}, err
	}

	var r Receipt
	if err := json.Unmarshal(b, &r); err != nil {
		return Receipt{}, fmt.Errorf("decode receipt %s: %w", executionID, err)
	}
	return r, nil
}

var _ ReceiptCache = (*RedisCache)(nil)
