package csv

import (
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/charset"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// CsvDelimiter represents supported CSV delimiters
type CsvDelimiter string

const (
	DelimiterComma     CsvDelimiter = ","
	DelimiterSemicolon CsvDelimiter = ";"
	DelimiterTab       CsvDelimiter = "\t"
	DelimiterPipe      CsvDelimiter = "|"
)

// ReaderOptions represents CSV reader options. The header row provides the
// field names of every record.
type ReaderOptions struct {
	// Delimiter is detected from the first lines when empty
	Delimiter CsvDelimiter `json:"delimiter,omitempty"`
	// Encoding of the file; "auto" sniffs the content
	Encoding  charset.Encoding  `json:"encoding,omitempty"`
	QuoteChar rune              `json:"quoteChar,omitempty"`
	KeyFields []string          `json:"keyFields"`
	Mode      types.CollectMode `json:"mode"`
	Limit     int               `json:"limit,omitempty"`
	Feed      string            `json:"feed,omitempty"`
}

// DefaultOptions returns default CSV reader options
func DefaultOptions() ReaderOptions {
	return ReaderOptions{
		Encoding:  charset.EncodingAuto,
		QuoteChar: '"',
		Mode:      types.CollectSingle,
	}
}
