// Package lock serialises the duplicate check and claim of one invoice number.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

var (
	ErrEmptyLockKey = errors.New("lock key cannot be empty")
	// ErrLockNotHeld is returned when unlock is called on a lock that already expired.
	ErrLockNotHeld = errors.New("lock was not held or already expired")
)

// RedisOptions tune lock acquisition.
type RedisOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultRedisOptions suit a check-and-insert that completes well within a second.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Expiry:     30 * time.Second,
		Tries:      20,
		RetryDelay: 100 * time.Millisecond,
	}
}

// RedisClaimLocker uses the RedLock algorithm so claims are exclusive across service instances.
type RedisClaimLocker struct {
	redsync *redsync.Redsync
	opts    RedisOptions
}

// NewRedisClaimLocker checks connectivity and builds the locker.
func NewRedisClaimLocker(ctx context.Context, client goredislib.UniversalClient, opts RedisOptions) (*RedisClaimLocker, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	defaults := DefaultRedisOptions()
	if opts.Expiry <= 0 {
		opts.Expiry = defaults.Expiry
	}
	if opts.Tries < 1 {
		opts.Tries = defaults.Tries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaults.RetryDelay
	}
	return &RedisClaimLocker{redsync: redsync.New(goredis.NewPool(client)), opts: opts}, nil
}

var _ portssvc.ClaimLocker = (*RedisClaimLocker)(nil)

func (l *RedisClaimLocker) Lock(ctx context.Context, key string) (portssvc.UnlockFunc, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyLockKey
	}

	mutex := l.redsync.NewMutex(key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if err != nil {
			return fmt.Errorf("distributed lock: unlock: %w", err)
		}
		if !ok {
			return ErrLockNotHeld
		}
		return nil
	}, nil
}
