package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/crm-dashboard/internal/crm"
	"github.com/ignite/crm-dashboard/internal/domain"
)

// fakeFetcher serves canned data and counts calls. An optional gate channel
// blocks a chosen call until released, to stage slow-response races.
type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	events map[int][]domain.TrackingEvent // keyed by call number (1-based)
	logs   []domain.SendLogRecord
	err    error

	gateOn int
	gate   chan struct{}
}

func (f *fakeFetcher) GetTrackingEvents(_ context.Context, _ crm.LogQuery) ([]domain.TrackingEvent, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if f.gate != nil && call == f.gateOn {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.events[call], nil
}

func (f *fakeFetcher) GetEmailLogs(_ context.Context, _ crm.LogQuery) ([]domain.SendLogRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.logs, nil
}

func (f *fakeFetcher) GetMissingLogContacts(_ context.Context, _, _ time.Time) ([]domain.MissingLogContact, error) {
	return []domain.MissingLogContact{{ContactID: "c1", Email: "a@x.com"}}, nil
}

func TestStatsFetchesOnMissThenHitsCache(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{
		events: map[int][]domain.TrackingEvent{
			1: {{Email: "a@x.com", EventType: domain.EventOpen, Timestamp: ts("2024-01-02T10:00:00Z")}},
		},
		logs: []domain.SendLogRecord{
			{ToEmail: "a@x.com", SentAt: ts("2024-01-01T08:00:00Z"), IsSuccess: true},
		},
	}
	svc := NewService(NewCache(ctx, NewMemoryStore(), 30*time.Minute), fetcher)

	first, err := svc.Stats(ctx, "user1", "camp-1", DateRange{}, false)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, first.Totals.Sent)
	assert.Equal(t, 1, first.Totals.Opens)
	assert.Equal(t, "100.0", first.OpenRate)

	second, err := svc.Stats(ctx, "user1", "camp-1", DateRange{}, false)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, fetcher.calls, "second call must not refetch")
}

func TestStatsWindowChangeUsesCachedRaw(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{
		events: map[int][]domain.TrackingEvent{
			1: {
				{Email: "a@x.com", EventType: domain.EventOpen, Timestamp: ts("2024-01-02T10:00:00Z")},
				{Email: "b@x.com", EventType: domain.EventOpen, Timestamp: ts("2024-02-02T10:00:00Z")},
			},
		},
	}
	svc := NewService(NewCache(ctx, NewMemoryStore(), 30*time.Minute), fetcher)

	full, err := svc.Stats(ctx, "user1", "camp-1", DateRange{}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, full.Totals.Opens)

	january, err := svc.Stats(ctx, "user1", "camp-1",
		DateRange{From: day("2024-01-01"), To: day("2024-01-31")}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, january.Totals.Opens)
	assert.Equal(t, 1, fetcher.calls, "narrowing the window re-filters, never refetches")
}

func TestStatsForceRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{
		events: map[int][]domain.TrackingEvent{
			1: {{Email: "a@x.com", EventType: domain.EventOpen, Timestamp: ts("2024-01-02T10:00:00Z")}},
			2: {
				{Email: "a@x.com", EventType: domain.EventOpen, Timestamp: ts("2024-01-02T10:00:00Z")},
				{Email: "b@x.com", EventType: domain.EventOpen, Timestamp: ts("2024-01-03T10:00:00Z")},
			},
		},
	}
	svc := NewService(NewCache(ctx, NewMemoryStore(), 30*time.Minute), fetcher)

	_, err := svc.Stats(ctx, "user1", "camp-1", DateRange{}, false)
	require.NoError(t, err)

	refreshed, err := svc.Stats(ctx, "user1", "camp-1", DateRange{}, true)
	require.NoError(t, err)
	assert.False(t, refreshed.FromCache)
	assert.Equal(t, 2, refreshed.Totals.Opens)
	assert.Equal(t, 2, fetcher.calls)
}

func TestStatsErrorPropagates(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{err: errors.New("network down")}
	svc := NewService(NewCache(ctx, NewMemoryStore(), 30*time.Minute), fetcher)

	_, err := svc.Stats(ctx, "user1", "camp-1", DateRange{}, false)
	assert.Error(t, err)
}

func TestStatsStaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	fetcher := &fakeFetcher{
		events: map[int][]domain.TrackingEvent{
			1: {{Email: "stale@x.com", EventType: domain.EventOpen, Timestamp: ts("2024-01-05T10:00:00Z")}},
			2: {{Email: "fresh@x.com", EventType: domain.EventOpen, Timestamp: ts("2024-01-02T10:00:00Z")}},
		},
		gateOn: 1,
		gate:   gate,
	}
	svc := NewService(NewCache(ctx, NewMemoryStore(), 30*time.Minute), fetcher)

	// First request hangs in flight (its fetch is gated).
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Stats(ctx, "user1", "camp-1", DateRange{}, true)
	}()

	// Wait until the slow fetch is actually in flight.
	require.Eventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return fetcher.calls == 1
	}, time.Second, time.Millisecond)

	// A second, faster request for the same campaign completes first.
	fresh, err := svc.Stats(ctx, "user1", "camp-1", DateRange{}, true)
	require.NoError(t, err)
	assert.False(t, fresh.FromCache)

	// Release the stale response; it must NOT overwrite the cache.
	close(gate)
	<-done

	cached, err := svc.Stats(ctx, "user1", "camp-1", DateRange{}, false)
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	require.Len(t, cached.DailyStats, 1)
	assert.Equal(t, "2024-01-02", cached.DailyStats[0].Date, "cache must hold the fresh fetch, not the stale one")
}

func TestMissingLogsProxies(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewCache(ctx, NewMemoryStore(), 30*time.Minute), &fakeFetcher{})

	missing, err := svc.MissingLogs(ctx,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "c1", missing[0].ContactID)
}
