package xlsx

import "github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"

// ReaderOptions represents XLSX reader options
type ReaderOptions struct {
	// SheetNameOrIndex specifies which sheet to read (default: first sheet).
	// Can be a string (sheet name) or int (sheet index, 0-based).
	SheetNameOrIndex interface{} `json:"sheetNameOrIndex,omitempty"`
	// HeaderRowCount is the number of rows to skip before the header row
	HeaderRowCount int               `json:"headerRowCount,omitempty"`
	KeyFields      []string          `json:"keyFields"`
	Mode           types.CollectMode `json:"mode"`
	Limit          int               `json:"limit,omitempty"`
	Feed           string            `json:"feed,omitempty"`
}

// DefaultOptions returns default XLSX reader options
func DefaultOptions() ReaderOptions {
	return ReaderOptions{
		Mode: types.CollectSingle,
	}
}
