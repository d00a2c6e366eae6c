package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImportXLSX(t *testing.T) {
	buf := buildSheet(t, [][]string{
		{"Name", "DOB", "Passport", "Expiry", "Phone"},
		{"Asha", "05.01.1990", "X1", "01.01.2030", "9876543210"},
		{"Ravi", "17.08.1975", "Y2", "", "8123456789"},
		{"", "01.01.2000", "Z3", "01.01.2031", ""},
		{"Broken", "not-a-date", "Z4", "01.01.2031", ""},
	})

	result, err := New().ImportXLSX(buf)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Dropped)
	require.Len(t, result.Records, 2)

	asha := result.Records[0]
	assert.Equal(t, "Asha", asha.Name)
	assert.Equal(t, time.Date(1990, 1, 5, 0, 0, 0, 0, time.UTC), asha.DateOfBirth)
	assert.Equal(t, "X1", asha.PassportNumber)
	require.True(t, asha.HasExpiry())
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), *asha.ExpiryDate)
	assert.Equal(t, "9876543210", asha.PhoneRaw)

	// Empty expiry keeps the record but leaves it out of expiry queries.
	assert.False(t, result.Records[1].HasExpiry())
}

func TestImportCSV(t *testing.T) {
	csvData := "Name,DOB,Passport,Expiry,Phone\n" +
		"Asha,05/01/1990,X1,01/01/2030,9876543210\n"

	result, err := New().ImportCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "02/01/2006", result.Layout)
	assert.Equal(t, time.Date(1990, 1, 5, 0, 0, 0, 0, time.UTC), result.Records[0].DateOfBirth)
}

func TestImportMissingColumns(t *testing.T) {
	csvData := "Name,DOB,Phone\nAsha,05.01.1990,9876543210\n"

	result, err := New().ImportCSV(strings.NewReader(csvData))
	assert.Nil(t, result)

	var missingErr *MissingColumnsError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []string{"Passport", "Expiry"}, missingErr.Columns)
}

// The layout is detected once from the first data row. Rows written with
// the other separator do not parse and are dropped.
func TestImportMixedSeparatorsDropsLaterRows(t *testing.T) {
	csvData := "Name,DOB,Passport,Expiry,Phone\n" +
		"Asha,05.01.1990,X1,01.01.2030,9876543210\n" +
		"Ravi,05/01/1985,Y2,01/01/2030,8123456789\n"

	result, err := New().ImportCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, "02.01.2006", result.Layout)
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Asha", result.Records[0].Name)
}

func TestImportTrimsHeaderWhitespace(t *testing.T) {
	csvData := " Name , DOB ,Passport, Expiry ,Phone\n" +
		"Asha,05.01.1990,X1,01.01.2030,9876543210\n"

	result, err := New().ImportCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
}

func TestImportEmptyFile(t *testing.T) {
	_, err := New().ImportCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestImportUnsupportedExtension(t *testing.T) {
	_, err := New().Import(strings.NewReader("x"), "records.pdf")
	assert.Error(t, err)
}
