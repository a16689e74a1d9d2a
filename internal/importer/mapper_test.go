package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestMapping(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   Mapping
	}{
		{
			name:   "exact headers",
			header: []string{"Name", "Email", "Company"},
			want:   Mapping{FieldName: "Name", FieldEmail: "Email", FieldCompany: "Company"},
		},
		{
			name:   "case insensitive substring",
			header: []string{"Contact Name", "E-Mail Address", "Job Title / Role"},
			want: Mapping{
				FieldName:     "Contact Name",
				FieldEmail:    "E-Mail Address",
				FieldJobTitle: "Job Title / Role",
			},
		},
		{
			name:   "linkedin claimed before website",
			header: []string{"Name", "Email", "LinkedIn URL", "Company Website"},
			want: Mapping{
				FieldName:           "Name",
				FieldEmail:          "Email",
				FieldLinkedIn:       "LinkedIn URL",
				FieldCompanyWebsite: "Company Website",
			},
		},
		{
			name:   "unknown columns unmapped",
			header: []string{"Favorite Color", "Shoe Size"},
			want:   Mapping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestMapping(tt.header))
		})
	}
}

func TestSuggestMappingClaimsColumnsOnce(t *testing.T) {
	// "Company" must not be claimed twice by company and company_website.
	m := SuggestMapping([]string{"Name", "Email", "Company", "Website"})
	assert.Equal(t, "Company", m[FieldCompany])
	assert.Equal(t, "Website", m[FieldCompanyWebsite])
}

func TestMappingHasRequired(t *testing.T) {
	assert.False(t, Mapping{}.HasRequired())
	assert.False(t, Mapping{FieldName: "Name"}.HasRequired())
	assert.False(t, Mapping{FieldEmail: "Email"}.HasRequired())
	assert.True(t, Mapping{FieldName: "Name", FieldEmail: "Email"}.HasRequired())
}

func TestColumnIndex(t *testing.T) {
	header := []string{"Name", " Email ", "Company"}
	assert.Equal(t, 1, columnIndex(header, "email"))
	assert.Equal(t, 2, columnIndex(header, "Company"))
	assert.Equal(t, -1, columnIndex(header, "Phone"))
}
