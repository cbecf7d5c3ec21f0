package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type localHold struct {
	token     string
	expiresAt time.Time
}

// LocalLocker is a process-local Locker used when no redis instance is
// configured. Holds expire after their TTL so a crashed close inside the
// same process cannot wedge a device forever.
type LocalLocker struct {
	mu    sync.Mutex
	holds map[string]localHold
	now   func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		holds: make(map[string]localHold),
		now:   time.Now,
	}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if ttl <= 0 {
		return "", false, ErrInvalidTTL
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if hold, ok := l.holds[key]; ok && hold.expiresAt.After(now) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.holds[key] = localHold{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *LocalLocker) Release(_ context.Context, key, token string) error {
	if key == "" || token == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if hold, ok := l.holds[key]; ok && hold.token == token {
		delete(l.holds, key)
	}
	return nil
}
