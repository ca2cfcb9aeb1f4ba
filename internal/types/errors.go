package types

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when an input feed file does not exist
	ErrSourceNotFound = errors.New("source not found")
	// ErrSourceUnreadable is returned when an input feed exists but cannot be opened or decoded
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrMalformedSource is returned when a feed's root cannot be parsed
	ErrMalformedSource = errors.New("malformed source")
	// ErrMalformedRecord marks a single element that could not be converted
	ErrMalformedRecord = errors.New("malformed record")
	// ErrOutputWriteFailed is returned when the canonical output cannot be written
	ErrOutputWriteFailed = errors.New("output write failed")
	// ErrCategoryTreeTooDeep is returned when a category tree exceeds the depth limit
	ErrCategoryTreeTooDeep = errors.New("category tree too deep")
	// ErrUnknownSupplier is returned for a supplier id with no registered profile
	ErrUnknownSupplier = errors.New("unknown supplier")
)

// MaxErrorSamples caps how many record errors a summary keeps verbatim
const MaxErrorSamples = 20

// RecordError describes one skipped record
type RecordError struct {
	Feed    string `json:"feed"`
	ItemKey string `json:"itemKey,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e RecordError) Error() string {
	if e.ItemKey != "" {
		return fmt.Sprintf("%s: item %s: %s", e.Feed, e.ItemKey, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Feed, e.Message)
}

// Unwrap lets errors.Is match ErrMalformedRecord
func (e RecordError) Unwrap() error {
	return ErrMalformedRecord
}

// ErrorSummary counts record errors and keeps the first few as samples
type ErrorSummary struct {
	Count   int           `json:"count"`
	Samples []RecordError `json:"samples,omitempty"`
}

// Add records e in the summary
func (s *ErrorSummary) Add(e RecordError) {
	s.Count++
	if len(s.Samples) < MaxErrorSamples {
		s.Samples = append(s.Samples, e)
	}
}

// Merge folds other into s
func (s *ErrorSummary) Merge(other ErrorSummary) {
	s.Count += other.Count
	for _, e := range other.Samples {
		if len(s.Samples) >= MaxErrorSamples {
			break
		}
		s.Samples = append(s.Samples, e)
	}
}
