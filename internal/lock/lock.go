// Package lock keeps two runners pointed at the same catalog from driving
// the suite at the same time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

// ErrLocked means another runner holds the lock.
var ErrLocked = errors.New("lock: held by another runner")

const keyPrefix = "catalogcheck:lock:"

// Release gives a held lock back.
type Release func(ctx context.Context) error

// Locker hands out redsync mutexes backed by Redis.
type Locker struct {
	rs *redsync.Redsync
}

// New creates a Locker on rdb.
func New(rdb redis.UniversalClient) *Locker {
	return &Locker{rs: redsync.New(redsyncredis.NewPool(rdb))}
}

// Dial parses a redis:// URL and returns a Locker plus the client to close.
func Dial(url string) (*Locker, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("lock: parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	return New(rdb), rdb, nil
}

// Acquire takes the lock for key without retrying. It returns an error
// wrapping ErrLocked when the lock could not be taken. The lock is extended
// every ttl/2 until Release is called; if this process dies it expires
// after ttl.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	mutex := l.rs.NewMutex(
		keyPrefix+key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)
	if err := mutex.LockContext(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// redsync reports a held lock and an unreachable node alike after
		// the single try; both mean this runner must not proceed.
		return nil, fmt.Errorf("%w: %s: %v", ErrLocked, key, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		keepAlive(context.WithoutCancel(ctx), mutex, key, ttl, stop)
	}()

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stop) })
		<-done
		if _, err := mutex.UnlockContext(ctx); err != nil {
			return fmt.Errorf("unlock %s: %w", key, err)
		}
		return nil
	}, nil
}

// keepAlive extends mutex until stop is closed or an extension fails.
func keepAlive(ctx context.Context, mutex *redsync.Mutex, key string, ttl time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ok, err := mutex.ExtendContext(ctx)
			if err != nil || !ok {
				logging.Component("lock").Warn("lock lost, another runner may start", "key", key, "err", err)
				return
			}
		}
	}
}

// Key is the lock key for a catalog base URL.
func Key(baseURL string) string { return "catalog:" + baseURL }
