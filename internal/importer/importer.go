// Package importer parses user-mapped bank CSV exports into rows ready for
// ledger insertion. Parsing is tolerant: bad rows are collected as RowErrors
// and the remaining rows still import.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfold-dev/billfold/internal/model"
)

// importDir is the subdirectory scanned for CSVs to import.
const importDir = "import"

// processedDir is where imported CSVs are moved afterwards.
const processedDir = "import/processed"

var dateFormats = []string{"2006-01-02", "01/02/2006"}

// RowError records a single unparseable row.
type RowError struct {
	Row int // 1-based row number in the file, including any header
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Options controls how a CSV is parsed.
type Options struct {
	Mapping   ColumnMapping
	HasHeader bool
}

// Parse reads a mapped CSV. Rows that fail to parse are returned as
// RowErrors; the error return is reserved for file-level failures.
func Parse(r io.Reader, opts Options) ([]model.ImportedRow, []RowError, error) {
	if err := opts.Mapping.Validate(); err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // column counts vary across bank exports

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading import CSV: %w", err)
	}

	start := 0
	if opts.HasHeader && len(records) > 0 {
		start = 1
	}

	var rows []model.ImportedRow
	var rowErrs []RowError
	for i, rec := range records[start:] {
		rowNum := start + i + 1
		row, err := parseRow(rec, opts.Mapping)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Err: err})
			continue
		}
		row.Row = rowNum
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func parseRow(rec []string, m ColumnMapping) (model.ImportedRow, error) {
	get := func(col int) string {
		if col < 0 || col >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[col])
	}

	rawDate := get(m.Date)
	if rawDate == "" {
		return model.ImportedRow{}, fmt.Errorf("missing date column %d", m.Date)
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return model.ImportedRow{}, err
	}

	rawAmount := get(m.Amount)
	if rawAmount == "" {
		return model.ImportedRow{}, fmt.Errorf("missing amount column %d", m.Amount)
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return model.ImportedRow{}, err
	}

	return model.ImportedRow{
		Date:        date,
		Description: get(m.Description),
		Amount:      amount,
		Category:    get(m.Category),
		Account:     get(m.Account),
		Notes:       get(m.Notes),
	}, nil
}

// parseDate accepts ISO (2006-01-02) or US (01/02/2006) dates.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unrecognized format", s)
}

// parseAmount strips currency symbols and thousands separators, and treats
// parenthesized amounts as negative.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns CSV files in <dataDir>/import/.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(dataDir, fileName string) error {
	src := filepath.Join(dataDir, importDir, fileName)
	dstDir := filepath.Join(dataDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
