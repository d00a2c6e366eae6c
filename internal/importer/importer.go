package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"passport-manager/internal/models"
)

// RequiredColumns are the header columns an import file must contain.
// A file missing any of them is rejected wholesale.
var RequiredColumns = []string{"Name", "DOB", "Passport", "Expiry", "Phone"}

// Date layouts accepted in DOB/Expiry columns. The layout is detected once
// from the first data row's DOB separator and applied to the whole file;
// rows using the other separator later on fail to parse and are dropped.
const (
	layoutSlash = "02/01/2006"
	layoutDot   = "02.01.2006"
)

// ErrNoData is returned for files with no header row at all.
var ErrNoData = errors.New("import file contains no data")

// MissingColumnsError reports which required columns were absent.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Result summarizes one import run.
type Result struct {
	Records []models.PassportRecord
	Total   int    // data rows seen
	Dropped int    // rows dropped for a missing or unparseable DOB
	Layout  string // detected date layout
}

// Importer loads passport records from tabular files.
type Importer struct {
	log zerolog.Logger
}

// New creates an importer with a component logger.
func New() *Importer {
	return &Importer{
		log: zerolog.New(os.Stdout).With().Str("component", "importer").Logger(),
	}
}

// ImportFile loads records from a file path, choosing the parser by
// extension (.xlsx/.xls or .csv).
func (imp *Importer) ImportFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return imp.Import(f, filepath.Base(path))
}

// Import loads records from a reader. The filename is only used to pick
// the parser by extension.
func (imp *Importer) Import(r io.Reader, filename string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return imp.ImportXLSX(r)
	case ".csv":
		return imp.ImportCSV(r)
	default:
		return nil, fmt.Errorf("unsupported import format: %q", filepath.Ext(filename))
	}
}

// ImportXLSX loads records from a spreadsheet. Only the first sheet is read.
func (imp *Importer) ImportXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return imp.importRows(rows)
}

// ImportCSV loads records from a comma-separated file.
func (imp *Importer) ImportCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return imp.importRows(rows)
}

// importRows converts raw rows into passport records. The first row is the
// header; rows without a parseable DOB are dropped, not repaired.
func (imp *Importer) importRows(rows [][]string) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	data := rows[1:]
	layout := layoutDot
	if len(data) > 0 {
		layout = detectLayout(cell(data[0], cols["DOB"]))
	}

	result := &Result{Layout: layout}
	for _, row := range data {
		result.Total++

		name := strings.TrimSpace(cell(row, cols["Name"]))
		dob, err := time.Parse(layout, strings.TrimSpace(cell(row, cols["DOB"])))
		if name == "" || err != nil {
			result.Dropped++
			continue
		}

		rec := models.PassportRecord{
			Name:           name,
			DateOfBirth:    dob,
			PassportNumber: strings.TrimSpace(cell(row, cols["Passport"])),
			PhoneRaw:       strings.TrimSpace(cell(row, cols["Phone"])),
		}

		// A bad expiry only excludes the record from expiry queries.
		if expiry, err := time.Parse(layout, strings.TrimSpace(cell(row, cols["Expiry"]))); err == nil {
			rec.ExpiryDate = &expiry
		}

		result.Records = append(result.Records, rec)
	}

	imp.log.Info().
		Int("total", result.Total).
		Int("loaded", len(result.Records)).
		Int("dropped", result.Dropped).
		Str("layout", layout).
		Msg("Import finished")

	return result, nil
}

// headerIndex maps required column names to their positions.
func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return cols, nil
}

// detectLayout picks the date layout from the first data row's separator.
func detectLayout(dob string) string {
	if strings.Contains(dob, "/") {
		return layoutSlash
	}
	return layoutDot
}

// cell returns a column value, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
