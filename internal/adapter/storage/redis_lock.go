package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nayoon/stock-service/internal/port"
)

const defaultLockRetryInterval = 50 * time.Millisecond

// Deletes the key only while it still holds our token.
var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker hands out leases with SET NX PX, polling until the wait timeout.
type RedisLocker struct {
	client        *redis.Client
	retryInterval time.Duration
}

func NewRedisLocker(client *redis.Client, retryInterval time.Duration) *RedisLocker {
	if retryInterval <= 0 {
		retryInterval = defaultLockRetryInterval
	}
	return &RedisLocker{client: client, retryInterval: retryInterval}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, wait, lease time.Duration) (port.Lock, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, lease).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return &redisLock{client: l.client, key: key, token: token}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, port.ErrLockTimeout
		}

		timer := time.NewTimer(min(l.retryInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", port.ErrLockTimeout, ctx.Err())
		case <-timer.C:
		}
	}
}

type redisLock struct {
	client *redis.Client
	key    string
	token  string
}

func (l *redisLock) Key() string {
	return l.key
}

func (l *redisLock) Release(ctx context.Context) error {
	n, err := releaseLockScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	if n == 0 {
		return port.ErrLockLost
	}

	return nil
}
