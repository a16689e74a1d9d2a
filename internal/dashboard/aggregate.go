package dashboard

import (
	"sort"

	"github.com/ignite/crm-dashboard/internal/domain"
)

// dayBucket accumulates one calendar day's counters during aggregation.
// Opens and clicks are sets of emails, so repeat events from the same
// contact count once per day.
type dayBucket struct {
	sent   int
	opens  map[string]struct{}
	clicks map[string]struct{}
}

func newDayBucket() *dayBucket {
	return &dayBucket{
		opens:  make(map[string]struct{}),
		clicks: make(map[string]struct{}),
	}
}

// Aggregate computes the per-day series and window totals from already
// filtered events and logs.
//
// Rules:
//   - sent counts only successful logs, bucketed by send date
//   - opens/clicks are unique emails per day, and unique across the whole
//     window for the totals
//   - TotalClicks is the raw click event count, not deduplicated
//   - Errors counts unsuccessful logs
//   - the series is sorted by date ascending; empty input yields an empty
//     slice and all-zero totals
func Aggregate(events []domain.TrackingEvent, logs []domain.SendLogRecord) ([]domain.DailyStat, domain.TotalsSummary) {
	buckets := make(map[string]*dayBucket)
	bucket := func(day string) *dayBucket {
		b, ok := buckets[day]
		if !ok {
			b = newDayBucket()
			buckets[day] = b
		}
		return b
	}

	totals := domain.TotalsSummary{}
	globalOpens := make(map[string]struct{})
	globalClicks := make(map[string]struct{})

	for _, l := range logs {
		if l.IsSuccess {
			totals.Sent++
			bucket(l.Day()).sent++
		} else {
			totals.Errors++
		}
	}

	for _, e := range events {
		// Only opens and clicks count. The CRM boundary already drops other
		// kinds, but an unknown type must never inflate the opens sets.
		switch e.EventType {
		case domain.EventClick:
			b := bucket(e.Day())
			b.clicks[e.Email] = struct{}{}
			globalClicks[e.Email] = struct{}{}
			totals.TotalClicks++
		case domain.EventOpen:
			b := bucket(e.Day())
			b.opens[e.Email] = struct{}{}
			globalOpens[e.Email] = struct{}{}
		}
	}

	totals.Opens = len(globalOpens)
	totals.Clicks = len(globalClicks)

	stats := make([]domain.DailyStat, 0, len(buckets))
	for day, b := range buckets {
		stats = append(stats, domain.DailyStat{
			Date:   day,
			Sent:   b.sent,
			Opens:  len(b.opens),
			Clicks: len(b.clicks),
		})
	}
	// Lexicographic order on YYYY-MM-DD is chronological order.
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })

	return stats, totals
}
