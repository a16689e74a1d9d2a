package domain

import "fmt"

// DailyStat is one row of the dashboard's per-day series. Derived data,
// recomputed whenever the inputs or the date window change.
//
// Opens and Clicks are unique-email counts for that day, not raw event counts.
type DailyStat struct {
	Date   string `json:"date"` // YYYY-MM-DD, ascending sort invariant
	Sent   int    `json:"sent"`
	Opens  int    `json:"opens"`
	Clicks int    `json:"clicks"`
}

// TotalsSummary holds the running totals over the whole filtered window.
// Opens and Clicks are deduplicated by email across the window; TotalClicks
// is the raw click event count.
type TotalsSummary struct {
	Sent        int `json:"sent"`
	Opens       int `json:"opens"`
	Clicks      int `json:"clicks"`
	TotalClicks int `json:"total_clicks"`
	Errors      int `json:"errors"`
}

// OpenRate returns the unique-open rate as a percentage string with one
// decimal place. Zero sends report "0.0", never a division by zero.
func (t TotalsSummary) OpenRate() string {
	return rate(t.Opens, t.Sent)
}

// ClickRate returns the unique-click rate as a percentage string with one
// decimal place.
func (t TotalsSummary) ClickRate() string {
	return rate(t.Clicks, t.Sent)
}

func rate(n, sent int) string {
	if sent == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(n)/float64(sent)*100)
}
