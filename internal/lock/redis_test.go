package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	opts := DefaultRedisOptions()
	opts.RetryDelay = 5 * time.Millisecond
	opts.Tries = 200
	return NewRedis(client, opts), mr
}

func TestRedis_WithLock(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	ctx := context.Background()

	err := locker.WithLock(ctx, GroupKey("g1"), func(context.Context) error {
		assert.True(t, mr.Exists("splitledger:lock:group:g1:expenses"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("splitledger:lock:group:g1:expenses"))
}

func TestRedis_SerializesSameKey(t *testing.T) {
	locker, _ := newTestRedisLocker(t)
	ctx := context.Background()

	var mu sync.Mutex
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(ctx, "k", func(context.Context) error {
				// Non-atomic read-modify-write guarded only by the lock
				mu.Lock()
				v := counter
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				counter = v + 1
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, counter)
}

func TestRedis_PropagatesError(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	boom := errors.New("boom")

	err := locker.WithLock(context.Background(), "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("splitledger:lock:k"))
}

func TestRedis_EmptyKey(t *testing.T) {
	locker, _ := newTestRedisLocker(t)
	err := locker.WithLock(context.Background(), "", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyKey)
}
