package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/crm-dashboard/internal/pkg/httputil"
)

// ListDataFiles proxies the CRM data file listing.
func (h *Handlers) ListDataFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.crm.GetDataFiles(r.Context())
	if err != nil {
		writeCRMError(w, err)
		return
	}
	httputil.OK(w, files)
}

// ListContacts proxies the contact listing for one data file.
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	dataFileID := r.URL.Query().Get("data_file_id")
	if dataFileID == "" {
		httputil.BadRequest(w, "data_file_id is required")
		return
	}
	contacts, err := h.crm.GetContacts(r.Context(), dataFileID)
	if err != nil {
		writeCRMError(w, err)
		return
	}
	httputil.OK(w, contacts)
}

// ListSegments proxies the CRM segment listing.
func (h *Handlers) ListSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.crm.GetSegments(r.Context())
	if err != nil {
		writeCRMError(w, err)
		return
	}
	httputil.OK(w, segments)
}

// CreateSegment creates a named CRM segment from a contact selection.
func (h *Handlers) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string   `json:"name"`
		ContactIDs []string `json:"contact_ids"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.BadRequest(w, "name is required")
		return
	}
	if len(req.ContactIDs) == 0 {
		httputil.BadRequest(w, "contact_ids must not be empty")
		return
	}
	segment, err := h.crm.CreateSegment(r.Context(), req.Name, req.ContactIDs)
	if err != nil {
		writeCRMError(w, err)
		return
	}
	httputil.Created(w, segment)
}

// AddSegmentContacts appends contacts to an existing segment.
func (h *Handlers) AddSegmentContacts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContactIDs []string `json:"contact_ids"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.ContactIDs) == 0 {
		httputil.BadRequest(w, "contact_ids must not be empty")
		return
	}
	if err := h.crm.AddContactsToSegment(r.Context(), chi.URLParam(r, "segmentID"), req.ContactIDs); err != nil {
		writeCRMError(w, err)
		return
	}
	httputil.NoContent(w)
}

// DeleteTrackingContact removes one contact from the tracking dataset.
func (h *Handlers) DeleteTrackingContact(w http.ResponseWriter, r *http.Request) {
	if err := h.crm.DeleteTrackingContact(r.Context(), chi.URLParam(r, "contactID")); err != nil {
		writeCRMError(w, err)
		return
	}
	httputil.NoContent(w)
}
