// Package importer implements the contact import wizard as an explicit
// finite-state machine: Uploaded → Mapped → Validated → Committed, with one
// backward transition per step. The old dashboard encoded this as a numeric
// step counter with scattered conditionals; here an out-of-order call is an
// ErrInvalidTransition, not a silent misbehavior.
package importer

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ignite/crm-dashboard/internal/crm"
	"github.com/ignite/crm-dashboard/internal/domain"
	"github.com/ignite/crm-dashboard/internal/pkg/logger"
)

// State names the wizard steps.
type State string

const (
	StateUploaded  State = "uploaded"  // initial: awaiting a spreadsheet
	StateMapped    State = "mapped"    // parsed, mapping adjustable
	StateValidated State = "validated" // rows partitioned, awaiting commit
	StateCommitted State = "committed" // terminal: batch accepted by the CRM
)

// previewRows is how many valid rows the Validated step shows the user.
const previewRows = 5

// Submitter is the slice of the CRM client the pipeline needs for commit.
type Submitter interface {
	UploadContacts(ctx context.Context, batch crm.ContactBatch) (*crm.UploadResult, error)
}

// Summary is the row partition of a validation pass.
type Summary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Pipeline is one import wizard session. Methods are safe for concurrent
// use; each call either performs its transition or fails without changing
// state.
type Pipeline struct {
	ID string

	mu        sync.Mutex
	state     State
	maxSize   int64
	submitter Submitter

	sheet   *Sheet
	mapping Mapping
	valid   []domain.Contact
	invalid []RowError
	result  *crm.UploadResult
}

// NewPipeline creates a wizard session in the Uploaded state.
func NewPipeline(maxSize int64, submitter Submitter) *Pipeline {
	return &Pipeline{
		ID:        uuid.New().String(),
		state:     StateUploaded,
		maxSize:   maxSize,
		submitter: submitter,
	}
}

// State returns the current wizard step.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Upload accepts and parses the spreadsheet, auto-suggests a column mapping,
// and moves to Mapped. Format and size rejections, and an empty parse
// result, leave the pipeline in Uploaded so the user can try another file.
func (p *Pipeline) Upload(filename string, size int64, r io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateUploaded {
		return ErrInvalidTransition
	}

	sheet, err := Parse(filename, size, r, p.maxSize)
	if err != nil {
		return err
	}

	p.sheet = sheet
	p.mapping = SuggestMapping(sheet.Header)
	p.state = StateMapped

	logger.Info("import: file parsed",
		"pipeline_id", p.ID, "file", sheet.FileName,
		"columns", len(sheet.Header), "rows", len(sheet.Rows))
	return nil
}

// SetMapping replaces the field→column mapping. Only valid while Mapped.
// Entries naming columns absent from the header are rejected outright.
func (p *Pipeline) SetMapping(m Mapping) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateMapped {
		return ErrInvalidTransition
	}
	for field, column := range m {
		if column != "" && columnIndex(p.sheet.Header, column) < 0 {
			return RowError{Row: 0, Field: field, Reason: ReasonMissingField}
		}
	}
	p.mapping = m
	return nil
}

// Mapping returns a copy of the current field→column mapping.
func (p *Pipeline) Mapping() Mapping {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := make(Mapping, len(p.mapping))
	for k, v := range p.mapping {
		m[k] = v
	}
	return m
}

// Header returns the parsed header row, or nil before upload.
func (p *Pipeline) Header() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sheet == nil {
		return nil
	}
	return append([]string(nil), p.sheet.Header...)
}

// Validate projects every row through the mapping and partitions them into
// valid and invalid, then moves to Validated. Requires name and email to be
// mapped. Invalid rows don't block the transition; they're surfaced for
// review and the user decides whether to proceed with the valid subset or
// go Back to remap.
func (p *Pipeline) Validate() (Summary, []RowError, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateMapped {
		return Summary{}, nil, ErrInvalidTransition
	}
	if !p.mapping.HasRequired() {
		return Summary{}, nil, ErrMissingMapping
	}

	p.valid = p.valid[:0]
	p.invalid = p.invalid[:0]

	for i, row := range p.sheet.Rows {
		rowNum := i + 2 // header is row 1
		contact := projectRow(p.sheet.Header, row, p.mapping)

		errs := validateContact(rowNum, contact)
		if len(errs) > 0 {
			p.invalid = append(p.invalid, errs...)
			continue
		}
		p.valid = append(p.valid, contact)
	}

	p.state = StateValidated
	return p.summaryLocked(), append([]RowError(nil), p.invalid...), nil
}

// Back returns from Validated to Mapped, discarding the partition.
func (p *Pipeline) Back() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateValidated {
		return ErrInvalidTransition
	}
	p.valid = nil
	p.invalid = nil
	p.state = StateMapped
	return nil
}

// Preview returns up to the first five valid rows for user review.
func (p *Pipeline) Preview() []domain.Contact {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.valid)
	if n > previewRows {
		n = previewRows
	}
	return append([]domain.Contact(nil), p.valid[:n]...)
}

// Summary returns the current row partition counts.
func (p *Pipeline) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summaryLocked()
}

func (p *Pipeline) summaryLocked() Summary {
	invalidRows := make(map[int]struct{})
	for _, e := range p.invalid {
		invalidRows[e.Row] = struct{}{}
	}
	return Summary{
		Total:   len(p.valid) + len(invalidRows),
		Valid:   len(p.valid),
		Invalid: len(invalidRows),
	}
}

// Errors returns the row errors of the last validation pass.
func (p *Pipeline) Errors() []RowError {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RowError(nil), p.invalid...)
}

// Commit submits all valid rows to the CRM as one batch under the given
// file-level name. Only a successful response moves to Committed; any
// failure leaves the pipeline in Validated with the error returned for
// display, and the user may retry manually. Nothing here retries.
func (p *Pipeline) Commit(ctx context.Context, name, description string) (*crm.UploadResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateValidated {
		return nil, ErrInvalidTransition
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	result, err := p.submitter.UploadContacts(ctx, crm.ContactBatch{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Contacts:    append([]domain.Contact(nil), p.valid...),
	})
	if err != nil {
		logger.Warn("import: commit failed", "pipeline_id", p.ID, "error", err)
		return nil, err
	}

	p.result = result
	p.state = StateCommitted
	logger.Info("import: batch committed",
		"pipeline_id", p.ID, "data_file_id", result.DataFileID, "imported", result.Imported)
	return result, nil
}

// Result returns the upload outcome, or nil before commit.
func (p *Pipeline) Result() *crm.UploadResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Reset discards all state and returns to Uploaded for a fresh import.
// Valid from any state.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sheet = nil
	p.mapping = nil
	p.valid = nil
	p.invalid = nil
	p.result = nil
	p.state = StateUploaded
}

// projectRow maps one spreadsheet row into the canonical contact shape.
// Mapped columns fill their field; everything else lands in Extra keyed by
// the original header name.
func projectRow(header []string, row []string, mapping Mapping) domain.Contact {
	cell := func(column string) string {
		idx := columnIndex(header, column)
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	c := domain.Contact{
		Name:           cell(mapping[FieldName]),
		Email:          strings.ToLower(cell(mapping[FieldEmail])),
		JobTitle:       cell(mapping[FieldJobTitle]),
		Company:        cell(mapping[FieldCompany]),
		Location:       cell(mapping[FieldLocation]),
		LinkedIn:       cell(mapping[FieldLinkedIn]),
		CompanyWebsite: cell(mapping[FieldCompanyWebsite]),
	}

	mapped := make(map[int]bool)
	for _, column := range mapping {
		if idx := columnIndex(header, column); idx >= 0 {
			mapped[idx] = true
		}
	}
	for i, h := range header {
		if mapped[i] || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			if c.Extra == nil {
				c.Extra = make(map[string]string)
			}
			c.Extra[strings.TrimSpace(h)] = v
		}
	}
	return c
}

// validateContact applies the row rules: name required, email required and
// well-formed. A row can carry more than one error.
func validateContact(rowNum int, c domain.Contact) []RowError {
	var errs []RowError
	if c.Name == "" {
		errs = append(errs, RowError{Row: rowNum, Field: FieldName, Reason: ReasonMissingField})
	}
	switch {
	case c.Email == "":
		errs = append(errs, RowError{Row: rowNum, Field: FieldEmail, Reason: ReasonMissingField})
	case !domain.ValidEmail(c.Email):
		errs = append(errs, RowError{Row: rowNum, Field: FieldEmail, Reason: ReasonInvalidEmail})
	}
	return errs
}
