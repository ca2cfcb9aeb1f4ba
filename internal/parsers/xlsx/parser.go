package xlsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// Reader reads a worksheet row by row; the first row after HeaderRowCount
// names the fields of every following row
type Reader struct {
	options ReaderOptions
}

// NewReader creates a new XLSX reader
func NewReader(options ReaderOptions) *Reader {
	if options.Mode == "" {
		options.Mode = types.CollectSingle
	}
	return &Reader{options: options}
}

// ReadFile reads the workbook at path into a collection
func (r *Reader) ReadFile(path string) (*types.Collection, types.ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, types.ReadStats{}, fmt.Errorf("%w: %s", types.ErrSourceNotFound, path)
		}
		return nil, types.ReadStats{}, fmt.Errorf("%w: %s: %v", types.ErrSourceUnreadable, path, err)
	}
	defer f.Close()

	return r.Read(f)
}

// Read reads a workbook from src into a collection
func (r *Reader) Read(src io.Reader) (*types.Collection, types.ReadStats, error) {
	var stats types.ReadStats

	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: failed to open workbook: %v", types.ErrMalformedSource, err)
	}
	defer f.Close()

	sheetName, err := r.selectSheet(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", types.ErrMalformedSource, err)
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: failed to read worksheet: %v", types.ErrMalformedSource, err)
	}
	defer rows.Close()

	collection := types.NewCollection(r.options.Mode)
	var headers []string
	rowNumber := 0

	for rows.Next() {
		rowNumber++
		if rowNumber <= r.options.HeaderRowCount {
			continue
		}

		cols, err := rows.Columns()
		if err != nil {
			stats.Truncated = true
			break
		}
		if isEmptyRow(cols) {
			continue
		}

		if headers == nil {
			headers = make([]string, len(cols))
			for i, h := range cols {
				headers[i] = strings.TrimSpace(h)
			}
			continue
		}

		if r.options.Limit > 0 && stats.Elements >= r.options.Limit {
			break
		}
		stats.Elements++

		rec := make(types.Record, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(cols) {
				continue
			}
			rec[h] = types.StringValue(strings.TrimSpace(cols[i]))
		}

		key := rec.String(r.options.KeyFields...)
		if key == "" {
			stats.Skipped++
			stats.Errors.Add(types.RecordError{
				Feed:    r.options.Feed,
				Field:   strings.Join(r.options.KeyFields, "|"),
				Message: fmt.Sprintf("row %d: missing item key", rowNumber),
			})
			continue
		}
		collection.Add(key, rec)
	}

	if headers == nil {
		return nil, stats, fmt.Errorf("%w: worksheet %q has no header row", types.ErrMalformedSource, sheetName)
	}

	stats.Collected = collection.Len()
	return collection, stats, nil
}

func (r *Reader) selectSheet(f *excelize.File) (string, error) {
	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if r.options.SheetNameOrIndex == nil {
		return sheetList[0], nil
	}

	switch v := r.options.SheetNameOrIndex.(type) {
	case int:
		if v < 0 || v >= len(sheetList) {
			return "", fmt.Errorf("sheet index %d not found. Workbook has %d sheets", v, len(sheetList))
		}
		return sheetList[v], nil
	case string:
		for _, name := range sheetList {
			if name == v {
				return name, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found. Available sheets: %s", v, strings.Join(sheetList, ", "))
	default:
		return sheetList[0], nil
	}
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
