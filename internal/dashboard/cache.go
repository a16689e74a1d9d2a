// Package dashboard implements the mail analytics core: the campaign data
// cache, the date-range filter, and the daily aggregation engine.
package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ignite/crm-dashboard/internal/domain"
	"github.com/ignite/crm-dashboard/internal/pkg/logger"
)

// Entry is one cached campaign bundle: the raw fetched records, the user
// who fetched them, and when. Entries are owned by the cache; callers get
// copies and never mutate cache internals.
type Entry struct {
	CampaignID  string                 `json:"campaign_id"`
	Events      []domain.TrackingEvent `json:"events"`
	EmailLogs   []domain.SendLogRecord `json:"email_logs"`
	OwnerUserID string                 `json:"owner_user_id"`
	FetchedAt   time.Time              `json:"fetched_at"`
}

// Cache is the campaign analytics cache. Every write serializes the full
// entry map to the Store. A Store failure (quota, lost connection) is not
// fatal: the cache empties itself and keeps running in degraded always-miss
// mode, so callers simply refetch.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	store   Store
	ttl     time.Duration

	// degraded is set after a persistence failure; every Get misses and
	// every Put is accepted but not persisted until ClearAll resets it.
	degraded bool

	now func() time.Time // injectable clock for tests
}

// NewCache builds a cache over the given store, restoring any persisted
// snapshot. A snapshot that fails to load or decode is discarded; the cache
// starts empty rather than failing construction.
func NewCache(ctx context.Context, store Store, ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		store:   store,
		ttl:     ttl,
		now:     time.Now,
	}

	snapshot, err := store.Load(ctx)
	if err != nil {
		logger.Warn("dashboard cache: snapshot load failed, starting empty", "error", err)
		return c
	}
	if len(snapshot) == 0 {
		return c
	}
	var entries map[string]Entry
	if err := json.Unmarshal(snapshot, &entries); err != nil {
		logger.Warn("dashboard cache: snapshot corrupt, starting empty", "error", err)
		return c
	}
	c.entries = entries
	return c
}

// Put stores a campaign bundle for the given owner, overwriting any prior
// entry for that campaign, and persists the updated map.
func (c *Cache) Put(ctx context.Context, campaignID string, events []domain.TrackingEvent, emailLogs []domain.SendLogRecord, ownerUserID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[campaignID] = Entry{
		CampaignID:  campaignID,
		Events:      append([]domain.TrackingEvent(nil), events...),
		EmailLogs:   append([]domain.SendLogRecord(nil), emailLogs...),
		OwnerUserID: ownerUserID,
		FetchedAt:   c.now(),
	}
	c.persist(ctx)
}

// Get returns a copy of the entry for campaignID if it exists, belongs to
// ownerUserID, and is younger than the TTL. Expired or foreign-owned entries
// are evicted on the spot. The second return is false on any miss.
func (c *Cache) Get(ctx context.Context, campaignID, ownerUserID string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.degraded {
		return Entry{}, false
	}

	entry, ok := c.entries[campaignID]
	if !ok {
		return Entry{}, false
	}

	if entry.OwnerUserID != ownerUserID || c.now().Sub(entry.FetchedAt) > c.ttl {
		delete(c.entries, campaignID)
		c.persist(ctx)
		return Entry{}, false
	}

	return copyEntry(entry), true
}

// ClearAll empties the cache and its persisted backing, and leaves degraded
// mode if a previous persistence failure had tripped it.
func (c *Cache) ClearAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	if err := c.store.Clear(ctx); err != nil {
		logger.Warn("dashboard cache: clear failed", "error", err)
		c.degraded = true
		return
	}
	c.degraded = false
}

// ClearForUser removes every entry owned by ownerUserID, e.g. when that
// user's session ends. Routine isolation doesn't need it: Get already
// refuses and evicts entries whose owner doesn't match the caller.
func (c *Cache) ClearForUser(ctx context.Context, ownerUserID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	for id, entry := range c.entries {
		if entry.OwnerUserID == ownerUserID {
			delete(c.entries, id)
			changed = true
		}
	}
	if changed {
		c.persist(ctx)
	}
}

// persist serializes the entry map to the store. On failure the cache drops
// everything and flips to degraded mode; callers are never handed the error.
// Must be called with c.mu held.
func (c *Cache) persist(ctx context.Context) {
	snapshot, err := json.Marshal(c.entries)
	if err == nil {
		err = c.store.Save(ctx, snapshot)
	}
	if err != nil {
		logger.Warn("dashboard cache: persistence failed, entering degraded mode", "error", err)
		c.entries = make(map[string]Entry)
		c.degraded = true
	}
}

func copyEntry(e Entry) Entry {
	return Entry{
		CampaignID:  e.CampaignID,
		Events:      append([]domain.TrackingEvent(nil), e.Events...),
		EmailLogs:   append([]domain.SendLogRecord(nil), e.EmailLogs...),
		OwnerUserID: e.OwnerUserID,
		FetchedAt:   e.FetchedAt,
	}
}
