package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

// RedisOptions configures the distributed lock.
type RedisOptions struct {
	// Prefix namespaces lock keys in Redis.
	Prefix string

	// Expiry bounds how long a crashed holder can block others.
	Expiry time.Duration

	// Tries is the number of acquisition attempts.
	Tries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// DefaultRedisOptions returns defaults suited to short append transactions.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Prefix:     "splitledger:lock:",
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

// Redis is a Locker shared by every process pointing at the same Redis,
// built on the redsync (RedLock) algorithm.
type Redis struct {
	rs   *redsync.Redsync
	opts RedisOptions
}

var _ Locker = (*Redis)(nil)

// NewRedis creates a Redis locker over client.
func NewRedis(client goredislib.UniversalClient, opts RedisOptions) *Redis {
	return &Redis{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
	}
}

// WithLock implements Locker.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if key == "" {
		return ErrEmptyKey
	}

	name := r.opts.Prefix + key
	mutex := r.rs.NewMutex(name,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(r.opts.Tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	defer func() {
		// Unlock with a fresh context: the caller's may already be cancelled.
		unlockCtx, cancel := context.WithTimeout(context.Background(), r.opts.Expiry)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			slog.Warn("failed to release lock", "lock", name, "error", err)
		}
	}()

	return fn(ctx)
}
