package importer

import (
	"errors"
	"fmt"
)

// Sentinel errors for the import pipeline.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format (want xlsx, xls, or csv)")
	ErrFileTooLarge      = errors.New("file exceeds the upload size limit")
	ErrEmptyFile         = errors.New("file contains no rows")
	ErrMissingMapping    = errors.New("name and email columns must be mapped")
	ErrInvalidTransition = errors.New("operation not valid in the current step")
	ErrNameRequired      = errors.New("import name is required")
)

// Reason classifies why a single row failed validation.
type Reason string

const (
	ReasonMissingField Reason = "missing_field"
	ReasonInvalidEmail Reason = "invalid_email_format"
)

// RowError is one validation failure, addressed by spreadsheet row number
// (1-based, counting the header as row 1) and canonical field.
type RowError struct {
	Row    int    `json:"row"`
	Field  Field  `json:"field"`
	Reason Reason `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Reason)
}
