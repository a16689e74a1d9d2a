package api

import (
	"context"
	"time"

	"github.com/ignite/crm-dashboard/internal/dashboard"
	"github.com/ignite/crm-dashboard/internal/domain"
	"github.com/ignite/crm-dashboard/internal/importer"
)

// DashboardService is the slice of the dashboard service the handlers use.
type DashboardService interface {
	Stats(ctx context.Context, userID, campaignID string, window dashboard.DateRange, forceRefresh bool) (*dashboard.StatsResult, error)
	MissingLogs(ctx context.Context, from, to time.Time) ([]domain.MissingLogContact, error)
	ClearCache(ctx context.Context)
}

// CRMProxy is the slice of the CRM client the proxy endpoints use.
type CRMProxy interface {
	GetDataFiles(ctx context.Context) ([]domain.DataFile, error)
	GetContacts(ctx context.Context, dataFileID string) ([]domain.Contact, error)
	GetSegments(ctx context.Context) ([]domain.Segment, error)
	CreateSegment(ctx context.Context, name string, contactIDs []string) (*domain.Segment, error)
	AddContactsToSegment(ctx context.Context, segmentID string, contactIDs []string) error
	DeleteTrackingContact(ctx context.Context, contactID string) error
}

// Handlers bundles the services behind the HTTP surface.
type Handlers struct {
	dashboard DashboardService
	crm       CRMProxy
	imports   *importer.Manager
	maxUpload int64
	health    *HealthChecker
}

// NewHandlers wires the HTTP layer to its services.
func NewHandlers(dash DashboardService, crmClient CRMProxy, imports *importer.Manager, maxUpload int64) *Handlers {
	return &Handlers{
		dashboard: dash,
		crm:       crmClient,
		imports:   imports,
		maxUpload: maxUpload,
	}
}
