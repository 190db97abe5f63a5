package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"tableside/internal/repository"
)

// KV backs a cart store with redis. Entries expire after ttl so abandoned
// table sessions do not pile up; ttl <= 0 means no expiry.
type KV struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewKV(rdb *redis.Client, ttl time.Duration) *KV {
	return &KV{rdb: rdb, ttl: ttl}
}

var _ repository.KV = (*KV)(nil)

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := k.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	return k.rdb.Set(ctx, key, value, k.ttl).Err()
}

func (k *KV) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return k.rdb.Del(ctx, keys...).Err()
}

func (k *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	return k.rdb.Keys(ctx, prefix+"*").Result()
}
