package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/crm-dashboard/internal/importer"
	"github.com/ignite/crm-dashboard/internal/pkg/httputil"
)

// importView is the wizard session as the frontend sees it. Fields beyond
// the current step are zero-valued.
type importView struct {
	ID               string              `json:"id"`
	State            importer.State      `json:"state"`
	Header           []string            `json:"header,omitempty"`
	SuggestedMapping importer.Mapping    `json:"suggested_mapping,omitempty"`
	Mapping          importer.Mapping    `json:"mapping,omitempty"`
	Summary          *importer.Summary   `json:"summary,omitempty"`
	Errors           []importer.RowError `json:"errors,omitempty"`
	Preview          any                 `json:"preview,omitempty"`
	Result           any                 `json:"result,omitempty"`
}

func viewOf(p *importer.Pipeline) importView {
	v := importView{
		ID:     p.ID,
		State:  p.State(),
		Header: p.Header(),
	}
	switch p.State() {
	case importer.StateMapped:
		v.Mapping = p.Mapping()
	case importer.StateValidated:
		v.Mapping = p.Mapping()
		s := p.Summary()
		v.Summary = &s
		v.Errors = p.Errors()
		v.Preview = p.Preview()
	case importer.StateCommitted:
		s := p.Summary()
		v.Summary = &s
		v.Result = p.Result()
	}
	return v
}

// writeImportError maps pipeline sentinels to HTTP statuses.
func writeImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		httputil.ErrorCode(w, http.StatusBadRequest, "unsupported_format", err.Error(), nil)
	case errors.Is(err, importer.ErrFileTooLarge):
		httputil.ErrorCode(w, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
	case errors.Is(err, importer.ErrEmptyFile):
		httputil.ErrorCode(w, http.StatusBadRequest, "empty_file", err.Error(), nil)
	case errors.Is(err, importer.ErrMissingMapping):
		httputil.ErrorCode(w, http.StatusBadRequest, "missing_mapping", err.Error(), nil)
	case errors.Is(err, importer.ErrNameRequired):
		httputil.ErrorCode(w, http.StatusBadRequest, "name_required", err.Error(), nil)
	case errors.Is(err, importer.ErrInvalidTransition):
		httputil.Conflict(w, err.Error())
	default:
		var rowErr importer.RowError
		if errors.As(err, &rowErr) {
			httputil.ErrorCode(w, http.StatusBadRequest, "unknown_column", err.Error(), rowErr)
			return
		}
		writeCRMError(w, err)
	}
}

// lookupImport resolves the {importID} route parameter, writing a 404 and
// returning nil when the session doesn't exist.
func (h *Handlers) lookupImport(w http.ResponseWriter, r *http.Request) *importer.Pipeline {
	p := h.imports.Get(chi.URLParam(r, "importID"))
	if p == nil {
		httputil.NotFound(w, "import session not found")
	}
	return p
}

// CreateImport starts a wizard session from a multipart spreadsheet upload.
func (h *Handlers) CreateImport(w http.ResponseWriter, r *http.Request) {
	// One extra MiB of headroom for the multipart framing; the pipeline
	// enforces the real per-file limit itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	p := h.imports.Create()
	if err := p.Upload(header.Filename, header.Size, file); err != nil {
		h.imports.Delete(p.ID)
		writeImportError(w, err)
		return
	}

	v := viewOf(p)
	v.SuggestedMapping = p.Mapping()
	httputil.Created(w, v)
}

// GetImport reports the current step and its artifacts.
func (h *Handlers) GetImport(w http.ResponseWriter, r *http.Request) {
	p := h.lookupImport(w, r)
	if p == nil {
		return
	}
	httputil.OK(w, viewOf(p))
}

// UpdateMapping replaces the column mapping while the session is on the
// mapping step.
func (h *Handlers) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	p := h.lookupImport(w, r)
	if p == nil {
		return
	}
	var req struct {
		Mapping importer.Mapping `json:"mapping"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := p.SetMapping(req.Mapping); err != nil {
		writeImportError(w, err)
		return
	}
	httputil.OK(w, viewOf(p))
}

// ValidateImport runs the row validation pass and advances to the review
// step.
func (h *Handlers) ValidateImport(w http.ResponseWriter, r *http.Request) {
	p := h.lookupImport(w, r)
	if p == nil {
		return
	}
	if _, _, err := p.Validate(); err != nil {
		writeImportError(w, err)
		return
	}
	httputil.OK(w, viewOf(p))
}

// CommitImport submits the valid rows to the CRM as a named batch.
func (h *Handlers) CommitImport(w http.ResponseWriter, r *http.Request) {
	p := h.lookupImport(w, r)
	if p == nil {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	_, err := p.Commit(r.Context(), req.Name, req.Description)
	recordImportCommit(err == nil)
	if err != nil {
		writeImportError(w, err)
		return
	}
	httputil.OK(w, viewOf(p))
}

// BackImport steps the session from the review step back to mapping.
func (h *Handlers) BackImport(w http.ResponseWriter, r *http.Request) {
	p := h.lookupImport(w, r)
	if p == nil {
		return
	}
	if err := p.Back(); err != nil {
		writeImportError(w, err)
		return
	}
	httputil.OK(w, viewOf(p))
}

// ResetImport returns the session to the upload step, discarding its file.
func (h *Handlers) ResetImport(w http.ResponseWriter, r *http.Request) {
	p := h.lookupImport(w, r)
	if p == nil {
		return
	}
	p.Reset()
	httputil.OK(w, viewOf(p))
}

// DeleteImport abandons a wizard session.
func (h *Handlers) DeleteImport(w http.ResponseWriter, r *http.Request) {
	h.imports.Delete(chi.URLParam(r, "importID"))
	httputil.NoContent(w)
}

// ImportTemplate serves the downloadable xlsx starter sheet.
func (h *Handlers) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := importer.Template()
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="contact_import_template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
