// Package lock serializes fiscal day transitions per device. A close must
// never run twice concurrently for the same device; devices do not contend
// with each other.
package lock

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyKey   = errors.New("lock key is empty")
	ErrInvalidTTL = errors.New("lock ttl must be positive")
)

// Locker grants a time-bounded exclusive hold on a key. TryLock does not
// block: when the key is already held it reports ok=false and the caller
// surfaces a concurrency error instead of waiting.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}
