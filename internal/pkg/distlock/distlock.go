// Package distlock provides a Redis ownership lock (SET NX with TTL).
// Release is atomic via a Lua script keyed on a random ownership value, so
// a holder whose TTL lapsed can't release a lock reacquired by someone else.
package distlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Lock is a single-use distributed lock. Each instance carries its own
// ownership value; create a fresh Lock per critical section.
type Lock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// New creates a lock on the given key. The TTL bounds how long a crashed
// holder can block other processes.
func New(client *redis.Client, key string, ttl time.Duration) (*Lock, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("generating lock ownership value: %w", err)
	}
	return &Lock{
		client: client,
		key:    "lock:" + key,
		value:  hex.EncodeToString(b),
		ttl:    ttl,
	}, nil
}

// Acquire tries to take the lock without blocking. Returns true on success.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	return ok, nil
}

// AcquireWait retries Acquire until it succeeds or the context is done.
func (l *Lock) AcquireWait(ctx context.Context, retry time.Duration) error {
	for {
		ok, err := l.Acquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}

// Release frees the lock if this instance still owns it.
func (l *Lock) Release(ctx context.Context) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.value).Result()
	return err
}
