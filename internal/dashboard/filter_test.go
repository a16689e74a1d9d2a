package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/crm-dashboard/internal/domain"
)

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFilterEventsWindow(t *testing.T) {
	events := []domain.TrackingEvent{
		{ID: "before", Timestamp: ts("2024-01-01T12:00:00Z")},
		{ID: "start", Timestamp: ts("2024-01-02T00:00:00Z")},
		{ID: "mid", Timestamp: ts("2024-01-03T09:30:00Z")},
		{ID: "end-late", Timestamp: ts("2024-01-04T23:59:59Z")},
		{ID: "after", Timestamp: ts("2024-01-05T00:00:00Z")},
	}

	got := FilterEvents(events, DateRange{From: day("2024-01-02"), To: day("2024-01-04")})

	ids := make([]string, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	// Both bounds inclusive on the calendar date, order preserved.
	assert.Equal(t, []string{"start", "mid", "end-late"}, ids)
}

func TestFilterEventsOpenBounds(t *testing.T) {
	events := []domain.TrackingEvent{
		{ID: "a", Timestamp: ts("2024-01-01T12:00:00Z")},
		{ID: "b", Timestamp: ts("2024-02-01T12:00:00Z")},
	}

	onlyFrom := FilterEvents(events, DateRange{From: day("2024-01-15")})
	assert.Len(t, onlyFrom, 1)
	assert.Equal(t, "b", onlyFrom[0].ID)

	onlyTo := FilterEvents(events, DateRange{To: day("2024-01-15")})
	assert.Len(t, onlyTo, 1)
	assert.Equal(t, "a", onlyTo[0].ID)
}

func TestFilterEventsNoBoundsCopies(t *testing.T) {
	events := []domain.TrackingEvent{
		{ID: "a", Timestamp: ts("2024-01-01T12:00:00Z")},
		{ID: "b", Timestamp: ts("2024-02-01T12:00:00Z")},
	}

	got := FilterEvents(events, DateRange{})
	assert.Equal(t, events, got)

	// Full copy, not the caller's backing array.
	got[0].ID = "mutated"
	assert.Equal(t, "a", events[0].ID)
}

func TestFilterIdempotent(t *testing.T) {
	events := []domain.TrackingEvent{
		{ID: "a", Timestamp: ts("2024-01-01T12:00:00Z")},
		{ID: "b", Timestamp: ts("2024-01-02T12:00:00Z")},
		{ID: "c", Timestamp: ts("2024-01-03T12:00:00Z")},
	}
	r := DateRange{From: day("2024-01-02"), To: day("2024-01-03")}

	once := FilterEvents(events, r)
	twice := FilterEvents(once, r)
	assert.Equal(t, once, twice)
}

func TestFilterLogsSameTruncationRule(t *testing.T) {
	logs := []domain.SendLogRecord{
		{ID: "in", SentAt: ts("2024-01-02T23:59:00Z")},
		{ID: "out", SentAt: ts("2024-01-03T00:00:01Z")},
	}

	got := FilterLogs(logs, DateRange{From: day("2024-01-02"), To: day("2024-01-02")})
	assert.Len(t, got, 1)
	assert.Equal(t, "in", got[0].ID)
}

func TestFilterUsesUTCDate(t *testing.T) {
	// 2024-01-02 23:00 in UTC-5 is 2024-01-03 04:00 UTC; the UTC date wins.
	loc := time.FixedZone("UTC-5", -5*3600)
	events := []domain.TrackingEvent{
		{ID: "e", Timestamp: time.Date(2024, 1, 2, 23, 0, 0, 0, loc)},
	}

	got := FilterEvents(events, DateRange{From: day("2024-01-03"), To: day("2024-01-03")})
	assert.Len(t, got, 1)
}
