package dashboard

import (
	"time"

	"github.com/ignite/crm-dashboard/internal/domain"
)

// DateRange is an inclusive UTC calendar-date window. Either bound may be
// nil, meaning unbounded on that side.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// contains reports whether the UTC date of ts falls inside the window.
// Comparison is on the "YYYY-MM-DD" truncation, so a 23:59 event on the end
// date is still in range.
func (r DateRange) contains(ts time.Time) bool {
	day := ts.UTC().Format(time.DateOnly)
	if r.From != nil && day < r.From.UTC().Format(time.DateOnly) {
		return false
	}
	if r.To != nil && day > r.To.UTC().Format(time.DateOnly) {
		return false
	}
	return true
}

// FilterEvents returns the events whose own timestamp falls in the window,
// order preserved. The input is never mutated; the result is always a fresh
// slice, even when both bounds are nil.
func FilterEvents(events []domain.TrackingEvent, r DateRange) []domain.TrackingEvent {
	out := make([]domain.TrackingEvent, 0, len(events))
	for _, e := range events {
		if r.contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}

// FilterLogs returns the send logs whose SentAt falls in the window, with
// the same truncation rule as FilterEvents.
func FilterLogs(logs []domain.SendLogRecord, r DateRange) []domain.SendLogRecord {
	out := make([]domain.SendLogRecord, 0, len(logs))
	for _, l := range logs {
		if r.contains(l.SentAt) {
			out = append(out, l)
		}
	}
	return out
}
