package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/adapters/lock"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*lock.RedisClaimLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker, err := lock.NewRedisClaimLocker(context.Background(), client, lock.RedisOptions{
		Expiry:     5 * time.Second,
		Tries:      200,
		RetryDelay: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	return locker, mr
}

// assertMutualExclusion runs goroutines competing for one key and checks that at most one is inside.
func assertMutualExclusion(t *testing.T, locker portssvc.ClaimLocker) {
	t.Helper()
	const goroutines = 8
	var inside, maxInside, done atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "invoice-claim:INV-1")
			if !assert.NoError(t, err) {
				return
			}
			cur := inside.Add(1)
			for {
				prev := maxInside.Load()
				if cur <= prev || maxInside.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			done.Add(1)
			assert.NoError(t, unlock(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, int32(goroutines), done.Load())
}

func TestRedisClaimLocker_MutualExclusion(t *testing.T) {
	locker, _ := newRedisLocker(t)
	assertMutualExclusion(t, locker)
}

func TestRedisClaimLocker_IndependentKeys(t *testing.T) {
	locker, mr := newRedisLocker(t)
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "invoice-claim:A")
	require.NoError(t, err)
	unlockB, err := locker.Lock(ctx, "invoice-claim:B")
	require.NoError(t, err)
	assert.True(t, mr.Exists("invoice-claim:A"))

	require.NoError(t, unlockA(ctx))
	require.NoError(t, unlockB(ctx))
	assert.False(t, mr.Exists("invoice-claim:A"))
}

func TestRedisClaimLocker_ExpiredLock(t *testing.T) {
	locker, mr := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "invoice-claim:A")
	require.NoError(t, err)
	mr.FastForward(10 * time.Second)

	assert.Error(t, unlock(ctx))
}

func TestRedisClaimLocker_EmptyKey(t *testing.T) {
	locker, _ := newRedisLocker(t)
	_, err := locker.Lock(context.Background(), " ")
	assert.ErrorIs(t, err, lock.ErrEmptyLockKey)
}

func TestNewRedisClaimLocker_Unreachable(t *testing.T) {
	client := goredislib.NewClient(&goredislib.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	_, err := lock.NewRedisClaimLocker(context.Background(), client, lock.RedisOptions{})
	assert.Error(t, err)
}

func TestLocalClaimLocker_MutualExclusion(t *testing.T) {
	locker := lock.NewLocalClaimLocker()
	assertMutualExclusion(t, locker)
	assert.Equal(t, 0, locker.Len())
}

func TestLocalClaimLocker_ContextCancelled(t *testing.T) {
	locker := lock.NewLocalClaimLocker()
	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(context.Background()))
	assert.ErrorIs(t, unlock(context.Background()), lock.ErrLockNotHeld)
	assert.Equal(t, 0, locker.Len())
}
