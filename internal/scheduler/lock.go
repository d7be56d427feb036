package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/praxisllmlab/catalogcheck/internal/lock"
	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

// WithLock wraps a Job so it acquires a distributed lock before running.
// If the lock is already held by another runner, the cycle is skipped.
type WithLock struct {
	inner Job
	lock  *lock.Locker
	key   string
	ttl   time.Duration
}

// NewWithLock creates a locked job wrapper. Runners sharing key never run
// the wrapped job at the same time.
func NewWithLock(inner Job, locker *lock.Locker, key string, ttl time.Duration) *WithLock {
	return &WithLock{
		inner: inner,
		lock:  locker,
		key:   key,
		ttl:   ttl,
	}
}

func (w *WithLock) Name() string { return w.inner.Name() }

func (w *WithLock) Run(ctx context.Context) error {
	release, err := w.lock.Acquire(ctx, w.key, w.ttl)
	if errors.Is(err, lock.ErrLocked) {
		logging.Component("scheduler").Warn("job skipped, lock held by another runner", "job", w.inner.Name(), "key", w.key)
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = release(context.WithoutCancel(ctx)) }()

	return w.inner.Run(ctx)
}
