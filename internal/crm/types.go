package crm

import (
	"strings"
	"time"

	"github.com/ignite/crm-dashboard/internal/domain"
)

// The remote CRM grew organically and its JSON is not uniform: the same
// logical field arrives under different names depending on which backend
// version produced the record. All of that is resolved here, once, at the
// boundary. Nothing outside this package ever sees a payload struct.

// LogQuery selects which slice of tracking data to fetch. Exactly one of
// DataFileID or SegmentID should be set.
type LogQuery struct {
	DataFileID string
	SegmentID  string
}

// ContactBatch is one committed import: a file-level name, an optional
// description, and the validated rows.
type ContactBatch struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Contacts    []domain.Contact `json:"contacts"`
}

// UploadResult reports the outcome of a contact batch upload.
type UploadResult struct {
	DataFileID string `json:"data_file_id"`
	Imported   int    `json:"imported"`
}

type trackingEventPayload struct {
	ID           string `json:"id"`
	ContactID    string `json:"contact_id"`
	Email        string `json:"email"`
	EmailAddress string `json:"email_address"` // legacy shape
	EventType    string `json:"event_type"`
	Type         string `json:"type"` // legacy shape
	Timestamp    string `json:"timestamp"`
	CreatedAt    string `json:"created_at"` // legacy shape
	TargetURL    string `json:"target_url"`
	URL          string `json:"url"` // legacy shape
	ClientID     string `json:"client_id"`
	DataFileID   string `json:"data_file_id"`
}

// normalize converts the wire payload to the canonical event. The second
// return is false for records the dashboard must not count: event kinds
// other than open/click (bounces, unsubscribes) and records whose timestamp
// doesn't parse, which would otherwise land in a year-one date bucket.
func (p trackingEventPayload) normalize() (domain.TrackingEvent, bool) {
	kind, ok := normalizeEventType(firstNonEmpty(p.EventType, p.Type))
	if !ok {
		return domain.TrackingEvent{}, false
	}
	ts := parseTimestamp(firstNonEmpty(p.Timestamp, p.CreatedAt))
	if ts.IsZero() {
		return domain.TrackingEvent{}, false
	}
	return domain.TrackingEvent{
		ID:         p.ID,
		ContactID:  p.ContactID,
		Email:      strings.ToLower(strings.TrimSpace(firstNonEmpty(p.Email, p.EmailAddress))),
		EventType:  kind,
		Timestamp:  ts,
		TargetURL:  firstNonEmpty(p.TargetURL, p.URL),
		ClientID:   p.ClientID,
		DataFileID: p.DataFileID,
	}, true
}

type emailLogPayload struct {
	ID           string `json:"id"`
	ContactID    string `json:"contact_id"`
	ToEmail      string `json:"to_email"`
	To           string `json:"to"`    // legacy shape
	Email        string `json:"email"` // legacy shape
	SentAt       string `json:"sent_at"`
	CreatedAt    string `json:"created_at"` // legacy shape
	IsSuccess    *bool  `json:"is_success"`
	Status       string `json:"status"` // legacy shape: "sent" / "failed"
	Subject      string `json:"subject"`
	ErrorMessage string `json:"error_message"`
	Error        string `json:"error"` // legacy shape
}

// normalize converts the wire payload to the canonical record. The second
// return is false when the send timestamp doesn't parse; such a record has
// no date bucket to live in.
func (p emailLogPayload) normalize() (domain.SendLogRecord, bool) {
	success := false
	if p.IsSuccess != nil {
		success = *p.IsSuccess
	} else {
		success = strings.EqualFold(p.Status, "sent")
	}
	ts := parseTimestamp(firstNonEmpty(p.SentAt, p.CreatedAt))
	if ts.IsZero() {
		return domain.SendLogRecord{}, false
	}
	return domain.SendLogRecord{
		ID:           p.ID,
		ContactID:    p.ContactID,
		ToEmail:      strings.ToLower(strings.TrimSpace(firstNonEmpty(p.ToEmail, p.To, p.Email))),
		SentAt:       ts,
		IsSuccess:    success,
		Subject:      p.Subject,
		ErrorMessage: firstNonEmpty(p.ErrorMessage, p.Error),
	}, true
}

type dataFilePayload struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	Name         string `json:"name"`
	FileName     string `json:"file_name"` // legacy shape
	Description  string `json:"description"`
	ContactCount int    `json:"contact_count"`
	CreatedAt    string `json:"created_at"`
}

func (p dataFilePayload) normalize() domain.DataFile {
	return domain.DataFile{
		ID:           p.ID,
		ClientID:     p.ClientID,
		Name:         firstNonEmpty(p.Name, p.FileName),
		Description:  p.Description,
		ContactCount: p.ContactCount,
		CreatedAt:    parseTimestamp(p.CreatedAt),
	}
}

type segmentPayload struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	Name         string `json:"name"`
	ContactCount int    `json:"contact_count"`
	CreatedAt    string `json:"created_at"`
}

func (p segmentPayload) normalize() domain.Segment {
	return domain.Segment{
		ID:           p.ID,
		ClientID:     p.ClientID,
		Name:         p.Name,
		ContactCount: p.ContactCount,
		CreatedAt:    parseTimestamp(p.CreatedAt),
	}
}

type contactPayload struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	FullName       string `json:"full_name"` // legacy shape
	Email          string `json:"email"`
	JobTitle       string `json:"job_title"`
	Title          string `json:"title"` // legacy shape
	Company        string `json:"company"`
	CompanyName    string `json:"company_name"` // legacy shape
	Location       string `json:"location"`
	City           string `json:"city"` // legacy shape
	LinkedIn       string `json:"linkedin"`
	LinkedInURL    string `json:"linkedin_url"` // legacy shape
	CompanyWebsite string `json:"company_website"`
	Website        string `json:"website"` // legacy shape
}

func (p contactPayload) normalize() domain.Contact {
	return domain.Contact{
		Name:           firstNonEmpty(p.Name, p.FullName),
		Email:          strings.ToLower(strings.TrimSpace(p.Email)),
		JobTitle:       firstNonEmpty(p.JobTitle, p.Title),
		Company:        firstNonEmpty(p.Company, p.CompanyName),
		Location:       firstNonEmpty(p.Location, p.City),
		LinkedIn:       firstNonEmpty(p.LinkedIn, p.LinkedInURL),
		CompanyWebsite: firstNonEmpty(p.CompanyWebsite, p.Website),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeEventType maps the wire event kind to the canonical type. Only
// opens and clicks feed the dashboard; everything else the CRM reports
// (bounces, unsubscribes, spam complaints) returns false and is dropped.
func normalizeEventType(s string) (domain.TrackingEventType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "opened":
		return domain.EventOpen, true
	case "click", "clicked":
		return domain.EventClick, true
	}
	return "", false
}

// timestampLayouts are the formats observed in CRM responses, newest first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
