package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerExclusive(t *testing.T) {
	l := NewLocalLocker()

	token, ok, err := l.TryLock(context.Background(), "fiscal:day:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	_, ok, err = l.TryLock(context.Background(), "fiscal:day:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different device is not blocked.
	_, ok, err = l.TryLock(context.Background(), "fiscal:day:2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Release(context.Background(), "fiscal:day:1", token))

	_, ok, err = l.TryLock(context.Background(), "fiscal:day:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLockerReleaseRequiresToken(t *testing.T) {
	l := NewLocalLocker()

	token, ok, err := l.TryLock(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Wrong token leaves the hold in place.
	require.NoError(t, l.Release(context.Background(), "k", "bogus"))
	_, ok, err = l.TryLock(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(context.Background(), "k", token))
	_, ok, err = l.TryLock(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLockerTTLExpiry(t *testing.T) {
	l := NewLocalLocker()
	now := time.Date(2025, 5, 2, 6, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, ok, err := l.TryLock(context.Background(), "k", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(10 * time.Second)
	_, ok, err = l.TryLock(context.Background(), "k", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// Past the TTL the hold is considered abandoned.
	now = now.Add(25 * time.Second)
	_, ok, err = l.TryLock(context.Background(), "k", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLockerValidation(t *testing.T) {
	l := NewLocalLocker()

	_, _, err := l.TryLock(context.Background(), "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, _, err = l.TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}
