package importer

import (
	"sort"
	"strings"
)

// Field is a canonical contact field a spreadsheet column can map to.
type Field string

const (
	FieldName           Field = "name"
	FieldEmail          Field = "email"
	FieldJobTitle       Field = "job_title"
	FieldCompany        Field = "company"
	FieldLocation       Field = "location"
	FieldLinkedIn       Field = "linkedin"
	FieldCompanyWebsite Field = "company_website"
)

// CanonicalFields lists every mappable field, in template column order.
var CanonicalFields = []Field{
	FieldName,
	FieldEmail,
	FieldJobTitle,
	FieldCompany,
	FieldLocation,
	FieldLinkedIn,
	FieldCompanyWebsite,
}

// fieldSynonyms are the substrings recognized per canonical field, matched
// case-insensitively against header names. Longer synonyms are tried before
// shorter ones across all fields, so "company website" claims its column
// before the bare "company" can steal it.
var fieldSynonyms = map[Field][]string{
	FieldName:           {"full name", "full_name", "contact name", "name"},
	FieldEmail:          {"e-mail", "email", "mail"},
	FieldJobTitle:       {"job title", "job_title", "title", "position", "role"},
	FieldCompany:        {"company name", "company_name", "organization", "organisation", "employer", "company"},
	FieldLocation:       {"location", "city", "region", "country"},
	FieldLinkedIn:       {"linkedin", "linked-in", "profile url"},
	FieldCompanyWebsite: {"company website", "company_website", "website", "web site", "domain", "url"},
}

// Mapping resolves canonical fields to spreadsheet column names.
type Mapping map[Field]string

// HasRequired reports whether the minimum viable mapping (name and email)
// is present.
func (m Mapping) HasRequired() bool {
	return m[FieldName] != "" && m[FieldEmail] != ""
}

// candidate pairs a field with one of its synonyms for ordered matching.
type candidate struct {
	field Field
	syn   string
}

// candidates returns every (field, synonym) pair, most specific (longest
// synonym) first; ties keep canonical field order so the result is stable.
func candidates() []candidate {
	var out []candidate
	for _, field := range CanonicalFields {
		for _, syn := range fieldSynonyms[field] {
			out = append(out, candidate{field, syn})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].syn) > len(out[j].syn)
	})
	return out
}

// SuggestMapping proposes a field→column mapping for the given header row
// by case-insensitive substring matching against the synonym table. Each
// column is claimed at most once. Columns that match nothing are left
// unmapped and flow into the contact's Extra bag at projection time.
func SuggestMapping(header []string) Mapping {
	mapping := make(Mapping)
	claimed := make(map[int]bool)

	for _, c := range candidates() {
		if mapping[c.field] != "" {
			continue
		}
		if idx := matchColumn(header, claimed, c.syn); idx >= 0 {
			mapping[c.field] = header[idx]
			claimed[idx] = true
		}
	}
	return mapping
}

// matchColumn returns the first unclaimed header index containing the
// synonym, preferring an exact (normalized) match over a substring one.
func matchColumn(header []string, claimed map[int]bool, syn string) int {
	substrIdx := -1
	for i, h := range header {
		if claimed[i] {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(h))
		if normalized == syn {
			return i
		}
		if substrIdx < 0 && strings.Contains(normalized, syn) {
			substrIdx = i
		}
	}
	return substrIdx
}

// columnIndex resolves a mapped column name back to its header position.
// Returns -1 when the header has no such column.
func columnIndex(header []string, column string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(column)) {
			return i
		}
	}
	return -1
}
