package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/crm-dashboard/internal/crm"
	"github.com/ignite/crm-dashboard/internal/domain"
	"github.com/ignite/crm-dashboard/internal/pkg/logger"
)

// Fetcher is the slice of the CRM client the dashboard needs.
type Fetcher interface {
	GetTrackingEvents(ctx context.Context, q crm.LogQuery) ([]domain.TrackingEvent, error)
	GetEmailLogs(ctx context.Context, q crm.LogQuery) ([]domain.SendLogRecord, error)
	GetMissingLogContacts(ctx context.Context, from, to time.Time) ([]domain.MissingLogContact, error)
}

// StatsResult is the display-ready analytics bundle for one campaign view.
type StatsResult struct {
	CampaignID string               `json:"campaign_id"`
	DailyStats []domain.DailyStat   `json:"daily_stats"`
	Totals     domain.TotalsSummary `json:"totals"`
	OpenRate   string               `json:"open_rate"`
	ClickRate  string               `json:"click_rate"`
	FromCache  bool                 `json:"from_cache"`
	FetchedAt  time.Time            `json:"fetched_at"`
}

// Service ties the cache, filter, and aggregation together.
//
// Every fetch for a campaign key carries a generation number. When a fetch
// resolves, its results are written to the cache only if its generation is
// still the latest for that key; a slower response from an earlier selection
// is discarded instead of clobbering fresher data. The old dashboard had no
// such guard and lost that race routinely.
type Service struct {
	cache *Cache
	crm   Fetcher

	mu          sync.Mutex
	generations map[string]uint64
}

// NewService creates a dashboard service over the cache and CRM client.
func NewService(cache *Cache, fetcher Fetcher) *Service {
	return &Service{
		cache:       cache,
		crm:         fetcher,
		generations: make(map[string]uint64),
	}
}

// nextGeneration stamps a new fetch for the campaign key.
func (s *Service) nextGeneration(campaignID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[campaignID]++
	return s.generations[campaignID]
}

// isLatest reports whether gen is still the newest fetch for the key.
func (s *Service) isLatest(campaignID string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[campaignID] == gen
}

// Stats returns the date-filtered daily series and totals for a campaign.
// Raw records come from the cache when fresh, otherwise from the CRM; the
// filter and aggregation always run on the raw bundle, so changing the date
// window never triggers a refetch.
func (s *Service) Stats(ctx context.Context, userID, campaignID string, window DateRange, forceRefresh bool) (*StatsResult, error) {
	var (
		events    []domain.TrackingEvent
		emailLogs []domain.SendLogRecord
		fetchedAt time.Time
		fromCache bool
	)

	if !forceRefresh {
		if entry, ok := s.cache.Get(ctx, campaignID, userID); ok {
			events, emailLogs = entry.Events, entry.EmailLogs
			fetchedAt = entry.FetchedAt
			fromCache = true
		}
	}

	if !fromCache {
		gen := s.nextGeneration(campaignID)

		q := crm.LogQuery{DataFileID: campaignID}
		fetched, err := s.crm.GetTrackingEvents(ctx, q)
		if err != nil {
			return nil, err
		}
		fetchedLogs, err := s.crm.GetEmailLogs(ctx, q)
		if err != nil {
			return nil, err
		}

		events, emailLogs = fetched, fetchedLogs
		fetchedAt = time.Now().UTC()

		if s.isLatest(campaignID, gen) {
			s.cache.Put(ctx, campaignID, events, emailLogs, userID)
		} else {
			logger.Debug("dashboard: discarding stale fetch result",
				"campaign_id", campaignID, "generation", gen)
		}
	}

	filteredEvents := FilterEvents(events, window)
	filteredLogs := FilterLogs(emailLogs, window)
	daily, totals := Aggregate(filteredEvents, filteredLogs)

	return &StatsResult{
		CampaignID: campaignID,
		DailyStats: daily,
		Totals:     totals,
		OpenRate:   totals.OpenRate(),
		ClickRate:  totals.ClickRate(),
		FromCache:  fromCache,
		FetchedAt:  fetchedAt,
	}, nil
}

// MissingLogs proxies the CRM's missing-log detection for a date window.
// Not cached: the result is cheap on the CRM side and staleness here is
// confusing when an operator is actively investigating gaps.
func (s *Service) MissingLogs(ctx context.Context, from, to time.Time) ([]domain.MissingLogContact, error) {
	return s.crm.GetMissingLogContacts(ctx, from, to)
}

// ClearCache empties the cache (manual refresh affordance).
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.ClearAll(ctx)
}
