package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nayoon/stock-service/internal/port"
)

const stockKeyPrefix = "stock:product:"

// Adjusts only an existing key so an expired entry is never recreated without TTL.
// INCRBY keeps the key's remaining TTL.
var adjustStockScript = redis.NewScript(`
local key = KEYS[1]
local delta = tonumber(ARGV[1])

if redis.call('EXISTS', key) == 0 then
	return false
end

return redis.call('INCRBY', key, delta)
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func StockKey(productID int64) string {
	return stockKeyPrefix + strconv.FormatInt(productID, 10)
}

func (r *RedisAdapter) Set(ctx context.Context, productID int64, remaining int, ttl time.Duration) error {
	return r.client.Set(ctx, StockKey(productID), remaining, ttl).Err()
}

func (r *RedisAdapter) SetIfAbsent(ctx context.Context, productID int64, remaining int, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, StockKey(productID), remaining, ttl).Result()
}

func (r *RedisAdapter) Delete(ctx context.Context, productID int64) error {
	return r.client.Del(ctx, StockKey(productID)).Err()
}

func (r *RedisAdapter) Get(ctx context.Context, productID int64) (int, bool, error) {
	remaining, err := r.client.Get(ctx, StockKey(productID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return remaining, true, nil
}

func (r *RedisAdapter) Exists(ctx context.Context, productID int64) (bool, error) {
	n, err := r.client.Exists(ctx, StockKey(productID)).Result()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (r *RedisAdapter) IncrementBy(ctx context.Context, productID int64, delta int) (int, error) {
	return r.adjust(ctx, productID, delta)
}

func (r *RedisAdapter) DecrementBy(ctx context.Context, productID int64, delta int) (int, error) {
	return r.adjust(ctx, productID, -delta)
}

func (r *RedisAdapter) adjust(ctx context.Context, productID int64, delta int) (int, error) {
	result, err := adjustStockScript.Run(ctx, r.client, []string{StockKey(productID)}, delta).Int()
	if errors.Is(err, redis.Nil) {
		return 0, port.ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}

	return result, nil
}
