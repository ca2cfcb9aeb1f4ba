package csv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/charset"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

const sniffSize = 2000

// Reader streams CSV rows as records keyed by the header row
type Reader struct {
	options ReaderOptions
}

// NewReader creates a new CSV reader with the given options
func NewReader(options ReaderOptions) *Reader {
	if options.QuoteChar == 0 {
		options.QuoteChar = '"'
	}
	if options.Encoding == "" {
		options.Encoding = charset.EncodingAuto
	}
	if options.Mode == "" {
		options.Mode = types.CollectSingle
	}
	return &Reader{options: options}
}

// ReadFile reads the CSV file at path into a collection
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

// Read reads CSV content from src into a collection
func (r *Reader) Read(src io.Reader) (*types.Collection, types.ReadStats, error) {
	var stats types.ReadStats

	utf8Src, _, err := charset.NewReader(src, r.options.Encoding)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", types.ErrSourceUnreadable, err)
	}

	buffered := bufio.NewReader(utf8Src)
	delimiter := r.options.Delimiter
	if delimiter == "" {
		sample, _ := buffered.Peek(sniffSize)
		delimiter = DetectDelimiter(string(sample))
	}
	delimRune := rune(delimiter[0])

	scanner := bufio.NewScanner(buffered)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	collection := types.NewCollection(r.options.Mode)
	var headers []string
	rowNumber := 0

	for scanner.Scan() {
		rowNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := SplitCSVLine(line, delimRune, r.options.QuoteChar)
		if headers == nil {
			headers = make([]string, len(fields))
			for i, h := range fields {
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
			if h == "" || i >= len(fields) {
				continue
			}
			rec[h] = types.StringValue(strings.TrimSpace(fields[i]))
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

	if err := scanner.Err(); err != nil {
		if headers == nil {
			return nil, stats, fmt.Errorf("%w: %v", types.ErrMalformedSource, err)
		}
		stats.Truncated = true
	}
	if headers == nil {
		return nil, stats, fmt.Errorf("%w: missing header row", types.ErrMalformedSource)
	}

	stats.Collected = collection.Len()
	return collection, stats, nil
}
