package domain

import "time"

// TrackingEventType enumerates the engagement event kinds the dashboard
// aggregates. The remote CRM reports more kinds (bounces, unsubscribes),
// but only opens and clicks feed the daily series.
type TrackingEventType string

const (
	EventOpen  TrackingEventType = "open"
	EventClick TrackingEventType = "click"
)

// TrackingEvent is a single engagement event for a contact. Events are
// produced by the remote CRM and are immutable once received.
type TrackingEvent struct {
	ID         string            `json:"id"`
	ContactID  string            `json:"contact_id,omitempty"`
	Email      string            `json:"email"`
	EventType  TrackingEventType `json:"event_type"`
	Timestamp  time.Time         `json:"timestamp"`
	TargetURL  string            `json:"target_url,omitempty"`
	ClientID   string            `json:"client_id"`
	DataFileID string            `json:"data_file_id"`
}

// Day returns the UTC calendar date ("YYYY-MM-DD") the event falls on.
// All daily bucketing uses this truncation, never local time.
func (e TrackingEvent) Day() string {
	return e.Timestamp.UTC().Format(time.DateOnly)
}

// SendLogRecord is one attempted send reported by the remote CRM, successful
// or not. Immutable once received.
type SendLogRecord struct {
	ID           string    `json:"id"`
	ContactID    string    `json:"contact_id,omitempty"`
	ToEmail      string    `json:"to_email"`
	SentAt       time.Time `json:"sent_at"`
	IsSuccess    bool      `json:"is_success"`
	Subject      string    `json:"subject,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Day returns the UTC calendar date ("YYYY-MM-DD") the send falls on.
func (l SendLogRecord) Day() string {
	return l.SentAt.UTC().Format(time.DateOnly)
}

// MissingLogContact is a contact the CRM expected a send log for within a
// date range but found none. Surfaced on the dashboard for operator review.
type MissingLogContact struct {
	ContactID string `json:"contact_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	LastSeen  string `json:"last_seen,omitempty"`
}
