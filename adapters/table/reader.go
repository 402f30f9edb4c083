package table

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gohypo/domain/core"
	"gohypo/domain/observable"
)

// Reader loads simulator result tables from TSV, CSV or XLSX files.
// The first column is the temperature axis; every further column is one
// observable, classified by its header label.
type Reader struct {
	filePath string
	format   string
}

// NewReader creates a reader with the format detected from the extension
func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath, format: DetectFormat(filePath)}
}

// Source returns the file path this reader loads
func (r *Reader) Source() string {
	return r.filePath
}

// Format returns the detected file format
func (r *Reader) Format() string {
	return r.format
}

// Read loads, parses and classifies the table
func (r *Reader) Read(_ context.Context) (*observable.Table, error) {
	startTime := time.Now()
	log.Printf("[TableReader] Reading %s file: %s", r.format, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.format), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.format {
	case FormatTSV:
		rows, err = r.readDelimited('\t')
	case FormatCSV:
		rows, err = r.readDelimited(',')
	case FormatXLSX:
		rows, err = r.readWorkbook()
	default:
		return nil, fmt.Errorf("unsupported file format: %s", r.format)
	}
	if err != nil {
		return nil, err
	}

	tbl, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}

	log.Printf("[TableReader] %s file processed (%d observables, %d samples) in %.2fms",
		strings.ToUpper(r.format), tbl.ObservableCount(), tbl.SampleCount(),
		float64(time.Since(startTime).Nanoseconds())/1e6)
	return tbl, nil
}

// readDelimited reads TSV or CSV rows
func (r *Reader) readDelimited(comma rune) ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", r.format, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // widths validated against the header later
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", r.format, err)
	}
	return rows, nil
}

// readWorkbook reads the first sheet of an XLSX workbook
func (r *Reader) readWorkbook() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets: %s", r.filePath)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// processRows turns raw string rows into a classified table. The header
// may carry the simulator's leading "#" marker; later "#" rows are
// skipped as comments.
func (r *Reader) processRows(rows [][]string) (*observable.Table, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyTable
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	headers[0] = strings.TrimSpace(strings.TrimPrefix(headers[0], "#"))

	if len(headers) < 2 {
		return nil, fmt.Errorf("%w: need a temperature column plus at least one observable", core.ErrNoObservables)
	}

	columns := make([][]float64, len(headers))
	sampleCount := 0
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if isBlank(row) || strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			continue
		}
		if len(row) != len(headers) {
			return nil, fmt.Errorf("row %d: %w: got %d cells, header has %d",
				rowIdx+1, core.ErrRaggedRow, len(row), len(headers))
		}

		for col, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, core.NewParseError(rowIdx+1, col+1, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewParseError(rowIdx+1, col+1, core.ErrNonFiniteValue)
			}
			columns[col] = append(columns[col], v)
		}
		sampleCount++
	}

	if sampleCount == 0 {
		return nil, core.ErrEmptyTable
	}
	if sampleCount < 2 {
		return nil, fmt.Errorf("table %s: %w", r.filePath, core.ErrCurveTooShort)
	}

	axis := columns[0]
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return nil, fmt.Errorf("column %q: %w", headers[0], core.ErrAxisNotIncreasing)
		}
	}

	tbl := &observable.Table{Source: r.filePath, Format: r.format, T: axis}
	seen := make(map[core.ObservableKey]bool)
	for col := 1; col < len(headers); col++ {
		label := headers[col]
		key := observable.KeyFromLabel(label, col)
		if seen[key] {
			key = core.ObservableKey(fmt.Sprintf("%s_%d", key, col))
		}
		seen[key] = true

		tbl.Curves = append(tbl.Curves, observable.Curve{
			Key:   key,
			Label: label,
			Kind:  observable.KindFromLabel(label),
			T:     axis,
			Y:     columns[col],
		})
	}

	return tbl, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
