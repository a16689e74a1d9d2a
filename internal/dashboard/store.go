package dashboard

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/crm-dashboard/internal/pkg/distlock"
)

// Store is the persistence adapter behind the cache. The cache serializes
// its whole entry map on every write, mirroring the session-storage model
// the SPA used before this service existed. Implementations must tolerate
// concurrent calls; the cache itself serializes access.
type Store interface {
	// Save persists the serialized cache snapshot.
	Save(ctx context.Context, snapshot []byte) error
	// Load returns the last saved snapshot, or nil if none exists.
	Load(ctx context.Context) ([]byte, error)
	// Clear removes any persisted snapshot.
	Clear(ctx context.Context) error
}

// MemoryStore keeps the snapshot in memory. Used in tests and as the
// fallback when no Redis address is configured.
type MemoryStore struct {
	snapshot []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, snapshot []byte) error {
	m.snapshot = append([]byte(nil), snapshot...)
	return nil
}

func (m *MemoryStore) Load(_ context.Context) ([]byte, error) {
	if m.snapshot == nil {
		return nil, nil
	}
	return append([]byte(nil), m.snapshot...), nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.snapshot = nil
	return nil
}

// RedisStore persists the snapshot under a fixed key. The key carries a
// generous expiry so abandoned sessions don't pin stale analytics forever;
// entry-level freshness is the cache's own 30-minute check, not Redis's.
type RedisStore struct {
	client *redis.Client
	key    string
	expiry time.Duration
}

// NewRedisStore creates a Redis-backed store writing under the given key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
		expiry: 24 * time.Hour,
	}
}

// Save writes under a short ownership lock. Save and Clear share the lock
// so a clear on one replica can't interleave with a save on another and
// resurrect a snapshot the user just dropped.
func (r *RedisStore) Save(ctx context.Context, snapshot []byte) error {
	lock, err := distlock.New(r.client, r.key, 5*time.Second)
	if err != nil {
		return err
	}
	if err := lock.AcquireWait(ctx, 50*time.Millisecond); err != nil {
		return err
	}
	defer lock.Release(ctx)
	return r.client.Set(ctx, r.key, snapshot, r.expiry).Err()
}

func (r *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	lock, err := distlock.New(r.client, r.key, 5*time.Second)
	if err != nil {
		return err
	}
	if err := lock.AcquireWait(ctx, 50*time.Millisecond); err != nil {
		return err
	}
	defer lock.Release(ctx)
	return r.client.Del(ctx, r.key).Err()
}
