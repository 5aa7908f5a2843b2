// Package batcher provides generic chunked iteration with pacing between chunks.
package batcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Driver paces chunked iteration over a slice.
type Driver struct {
	size   int
	pacing time.Duration
	sleep  func(context.Context, time.Duration) error
	logger *zap.Logger
}

// New constructs a Driver.
func New(logger *zap.Logger, size int, pacing time.Duration, sleep func(context.Context, time.Duration) error) (*Driver, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}
	if pacing < 0 {
		return nil, fmt.Errorf("pacing must not be negative, got %s", pacing)
	}
	if sleep == nil {
		return nil, errors.New("sleep func is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		size:   size,
		pacing: pacing,
		sleep:  sleep,
		logger: logger,
	}, nil
}

// Size returns the configured batch size.
func (d *Driver) Size() int {
	return d.size
}

// ForEach invokes action once per contiguous chunk of items, in input order.
// A pacing delay follows every full-size chunk except the last one.
// The first action error stops the iteration and is returned unchanged.
func ForEach[T any](ctx context.Context, d *Driver, items []T, action func(context.Context, []T) error) error {
	chunks := Chunks(items, d.size)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := time.Now()
		if err := action(ctx, chunk); err != nil {
			return err
		}
		d.logger.Debug("batch done",
			zap.Int("batch", i+1),
			zap.Int("batches", len(chunks)),
			zap.Int("size", len(chunk)),
			zap.Duration("took", time.Since(started)),
		)

		last := i == len(chunks)-1
		if last || len(chunk) < d.size || d.pacing == 0 {
			continue
		}
		if err := d.sleep(ctx, d.pacing); err != nil {
			return err
		}
	}
	return nil
}

// Chunks splits items into contiguous slices of at most size elements.
// The returned slices share the backing array of items.
func Chunks[T any](items []T, size int) [][]T {
	if len(items) == 0 || size <= 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}
