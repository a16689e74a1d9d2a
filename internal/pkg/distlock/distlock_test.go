package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestAcquireRelease(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	a, err := New(client, "snapshot", time.Minute)
	require.NoError(t, err)
	b, err := New(client, "snapshot", time.Minute)
	require.NoError(t, err)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire a held lock")

	require.NoError(t, a.Release(ctx))

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseOnlyByOwner(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	a, err := New(client, "snapshot", time.Minute)
	require.NoError(t, err)
	b, err := New(client, "snapshot", time.Minute)
	require.NoError(t, err)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// b never held the lock; releasing is a no-op, not a steal.
	require.NoError(t, b.Release(ctx))

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "a still owns the lock")
}

func TestAcquireAfterTTLExpiry(t *testing.T) {
	client, mr := testClient(t)
	ctx := context.Background()

	a, err := New(client, "snapshot", time.Second)
	require.NoError(t, err)
	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	b, err := New(client, "snapshot", time.Minute)
	require.NoError(t, err)
	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock is up for grabs")
}

func TestAcquireWaitHonorsContext(t *testing.T) {
	client, _ := testClient(t)

	a, err := New(client, "snapshot", time.Minute)
	require.NoError(t, err)
	ok, err := a.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	b, err := New(client, "snapshot", time.Minute)
	require.NoError(t, err)
	err = b.AcquireWait(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
