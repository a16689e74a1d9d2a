package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testMaxSize = 10 << 20

func TestParseCSV(t *testing.T) {
	csv := "Name,Email,Company\nAlice,alice@x.com,Acme\nBob,bob@x.com,Bolt\n"

	sheet, err := Parse("contacts.csv", int64(len(csv)), strings.NewReader(csv), testMaxSize)
	require.NoError(t, err)

	assert.Equal(t, "contacts.csv", sheet.FileName)
	assert.Equal(t, []string{"Name", "Email", "Company"}, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []string{"Alice", "alice@x.com", "Acme"}, sheet.Rows[0])
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("contacts.pdf", 10, strings.NewReader("x"), testMaxSize)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseRejectsOversizeBeforeReading(t *testing.T) {
	// 10 MiB + 1 byte, rejected on the declared size alone: the reader
	// would explode if touched.
	explosive := explodingReader{}
	_, err := Parse("big.csv", testMaxSize+1, explosive, testMaxSize)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestParseRejectsOversizeStream(t *testing.T) {
	// Unknown declared size but an oversized stream still trips the limit.
	big := strings.NewReader(strings.Repeat("a", testMaxSize+1))
	_, err := Parse("big.csv", -1, big, testMaxSize)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse("empty.csv", 0, strings.NewReader(""), testMaxSize)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseHeaderOnlyIsEmpty(t *testing.T) {
	csv := "Name,Email\n\n  , \n"
	_, err := Parse("header.csv", int64(len(csv)), strings.NewReader(csv), testMaxSize)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseSkipsBlankRows(t *testing.T) {
	csv := "Name,Email\n\nAlice,alice@x.com\n , \nBob,bob@x.com\n"
	sheet, err := Parse("gaps.csv", int64(len(csv)), strings.NewReader(csv), testMaxSize)
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 2)
}

func TestParseXLSXRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &[]string{"Name", "Email"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A2", &[]string{"Alice", "alice@x.com"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	sheet, err := Parse("contacts.xlsx", int64(buf.Len()), &buf, testMaxSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email"}, sheet.Header)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, []string{"Alice", "alice@x.com"}, sheet.Rows[0])
}

func TestTemplateParsesBack(t *testing.T) {
	data, err := Template()
	require.NoError(t, err)

	// The generated template carries only the fixed header, so parsing it
	// as an upload must report an empty file.
	_, err = Parse("template.xlsx", int64(len(data)), bytes.NewReader(data), testMaxSize)
	assert.ErrorIs(t, err, ErrEmptyFile)

	// And the header itself must auto-map fully.
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	m := SuggestMapping(rows[0])
	for _, field := range CanonicalFields {
		assert.NotEmpty(t, m[field], "template header must map field %s", field)
	}
}

type explodingReader struct{}

func (explodingReader) Read([]byte) (int, error) {
	return 0, errors.New("read should not have been attempted")
}
