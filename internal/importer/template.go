package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// templateHeaders are the fixed column titles of the downloadable import
// template, one per canonical field, in CanonicalFields order.
var templateHeaders = map[Field]string{
	FieldName:           "Name",
	FieldEmail:          "Email",
	FieldJobTitle:       "Job Title",
	FieldCompany:        "Company",
	FieldLocation:       "Location",
	FieldLinkedIn:       "LinkedIn",
	FieldCompanyWebsite: "Company Website",
}

// Template builds the fixed-header .xlsx workbook users download, fill in,
// and upload. The header row is bold so it reads as a header, nothing more.
func Template() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, field := range CanonicalFields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("building template: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, templateHeaders[field]); err != nil {
			return nil, fmt.Errorf("building template: %w", err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(CanonicalFields), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}
	return buf.Bytes(), nil
}
