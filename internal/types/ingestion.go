package types

import "time"

// FileType represents supported feed file formats
type FileType string

const (
	FileTypeXML  FileType = "xml"
	FileTypeJSON FileType = "json"
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// FeedKind names the role a feed plays in a supplier run
type FeedKind string

const (
	FeedProducts   FeedKind = "products"
	FeedPrices     FeedKind = "prices"
	FeedStock      FeedKind = "stock"
	FeedCategories FeedKind = "categories"
	FeedLabeling   FeedKind = "labeling"
	FeedPrinting   FeedKind = "printing"
)

// ReadStats reports what a feed reader saw
type ReadStats struct {
	Elements  int          `json:"elements"`
	Collected int          `json:"collected"`
	Skipped   int          `json:"skipped"`
	Truncated bool         `json:"truncated,omitempty"`
	Errors    ErrorSummary `json:"errors"`
}

// ProductCounts counts output units by type
type ProductCounts struct {
	Products   int `json:"products"`
	Simple     int `json:"simple"`
	Variable   int `json:"variable"`
	Variations int `json:"variations"`
}

// RunStatus represents status of a supplier run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunResult is the structured outcome of one supplier run. Run-level
// failures are reported here with Success=false, never as panics.
type RunResult struct {
	RunID       string               `json:"runId"`
	Supplier    string               `json:"supplier"`
	Status      RunStatus            `json:"status"`
	Success     bool                 `json:"success"`
	Message     string               `json:"message,omitempty"`
	OutputPath  string               `json:"outputPath,omitempty"`
	Counts      ProductCounts        `json:"counts"`
	Feeds       map[string]ReadStats `json:"feeds,omitempty"`
	Errors      ErrorSummary         `json:"errors"`
	StartedAt   time.Time            `json:"startedAt"`
	CompletedAt *time.Time           `json:"completedAt,omitempty"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to the given time
func TimePtr(t time.Time) *time.Time {
	return &t
}
