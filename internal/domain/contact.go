package domain

import (
	"regexp"
	"time"
)

// Contact is the canonical shape every imported spreadsheet row is projected
// into. Columns that map to no canonical field land in Extra, keyed by their
// original header name.
type Contact struct {
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	JobTitle       string            `json:"job_title,omitempty"`
	Company        string            `json:"company,omitempty"`
	Location       string            `json:"location,omitempty"`
	LinkedIn       string            `json:"linkedin,omitempty"`
	CompanyWebsite string            `json:"company_website,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s is a syntactically plausible email address.
// This is the single email rule used by import validation.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// DataFile is a contact file known to the remote CRM.
type DataFile struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ContactCount int       `json:"contact_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Segment is a saved contact selection on the remote CRM.
type Segment struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	Name         string    `json:"name"`
	ContactCount int       `json:"contact_count"`
	CreatedAt    time.Time `json:"created_at"`
}
