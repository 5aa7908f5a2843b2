// Package lock guards reconciliation runs against concurrent execution.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 30 * time.Minute

// ErrLocked reports that another run holds the lock.
var ErrLocked = errors.New("reconciliation lock is held by another run")

// ErrLost reports that the lock expired or was taken over before release.
var ErrLost = errors.New("reconciliation lock lost before release")

// releaseScript deletes the key only while it still carries our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLock is a single-holder lock on one Redis key.
type RedisLock struct {
	client   Client
	key      string
	ttl      time.Duration
	metrics  Metrics
	logger   *zap.Logger
	newToken func() string
}

func NewRedisLock(client Client, key string, ttl time.Duration, metrics Metrics, logger *zap.Logger) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if metrics == nil {
		return nil, errors.New("lock metrics is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLock{
		client:   client,
		key:      key,
		ttl:      ttl,
		metrics:  metrics,
		logger:   logger,
		newToken: uuid.NewString,
	}, nil
}

// Acquire takes the lock or fails with ErrLocked. The returned func releases it.
func (l *RedisLock) Acquire(ctx context.Context) (release func(context.Context) error, err error) {
	start := time.Now()
	defer func() {
		l.metrics.Observe("acquire", err, start)
	}()

	token := l.newToken()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !ok {
		err = fmt.Errorf("%w: %s", ErrLocked, l.key)
		return nil, err
	}
	l.logger.Debug("lock acquired", zap.String("key", l.key), zap.Duration("ttl", l.ttl))

	return func(ctx context.Context) error {
		return l.release(ctx, token)
	}, nil
}

func (l *RedisLock) release(ctx context.Context, token string) (err error) {
	start := time.Now()
	defer func() {
		l.metrics.Observe("release", err, start)
	}()

	deleted, err := l.client.Eval(ctx, releaseScript, []string{l.key}, token).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	if deleted == 0 {
		err = fmt.Errorf("%w: %s", ErrLost, l.key)
		return err
	}
	l.logger.Debug("lock released", zap.String("key", l.key))
	return nil
}
