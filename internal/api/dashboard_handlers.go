package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/crm-dashboard/internal/crm"
	"github.com/ignite/crm-dashboard/internal/dashboard"
	"github.com/ignite/crm-dashboard/internal/pkg/httputil"
)

// parseDateParam reads an optional YYYY-MM-DD query parameter.
func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%s must be a YYYY-MM-DD date", name)
	}
	return &t, nil
}

// writeCRMError maps a CRM call failure to a gateway response. Structured
// API errors carry the remote server's message through; anything else is a
// transport failure.
func writeCRMError(w http.ResponseWriter, err error) {
	var apiErr *crm.APIError
	if errors.As(err, &apiErr) {
		httputil.BadGateway(w, apiErr.Message)
		return
	}
	httputil.BadGateway(w, "CRM request failed: "+err.Error())
}

// GetCampaignStats serves the analytics bundle for one campaign, optionally
// bounded by from/to dates and bypassing the cache with refresh=true.
func (h *Handlers) GetCampaignStats(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")

	from, err := parseDateParam(r, "from")
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		httputil.BadRequest(w, "to must not be before from")
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	window := dashboard.DateRange{From: from, To: to}

	result, err := h.dashboard.Stats(r.Context(), UserID(r), campaignID, window, refresh)
	if err != nil {
		writeCRMError(w, err)
		return
	}
	recordCacheLookup(result.FromCache)
	httputil.OK(w, result)
}

// GetMissingLogs lists contacts with tracking activity but no send log in
// the given window. Both bounds are required.
func (h *Handlers) GetMissingLogs(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if from == nil || to == nil {
		httputil.BadRequest(w, "from and to are required")
		return
	}

	contacts, err := h.dashboard.MissingLogs(r.Context(), *from, *to)
	if err != nil {
		writeCRMError(w, err)
		return
	}
	httputil.OK(w, contacts)
}

// ClearCache drops every cached campaign dataset.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.dashboard.ClearCache(r.Context())
	httputil.NoContent(w)
}
