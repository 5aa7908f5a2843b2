package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Client is the part of the Redis client the lock uses.
	Client interface {
		SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
		Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
