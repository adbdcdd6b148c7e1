package redisclient

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/lock"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("CLINIC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CLINIC_TEST_REDIS_ADDR not set")
	}
	rdb, err := NewRedisClient(context.Background(), Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisLockerSerialises(t *testing.T) {
	rdb := testClient(t)
	locker := NewRedisLocker(rdb, 2*time.Second)
	key := "test-" + t.Name()

	var inside, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), key, func(context.Context) error {
				n := inside.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				time.Sleep(5 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	exists, err := rdb.Exists(context.Background(), keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRedisLockerTimesOutWhenHeld(t *testing.T) {
	rdb := testClient(t)
	key := "test-" + t.Name()
	require.NoError(t, rdb.Set(context.Background(), keyPrefix+key, "someone-else", time.Second).Err())
	t.Cleanup(func() { rdb.Del(context.Background(), keyPrefix+key) })

	locker := NewRedisLocker(rdb, 100*time.Millisecond)
	err := locker.WithLock(context.Background(), key, func(context.Context) error {
		t.Fatal("fn must not run while the key is held")
		return nil
	})
	assert.True(t, errors.Is(err, lock.ErrNotAcquired))

	val, err := rdb.Get(context.Background(), keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}
