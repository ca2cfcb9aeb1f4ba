// Package feed dispatches a feed description to the reader for its format.
package feed

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/charset"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/csv"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/json"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/xlsx"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/xml"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// Spec describes one input feed of a supplier
type Spec struct {
	Kind types.FeedKind `json:"kind" yaml:"kind"`
	// Path is relative to the supplier's input directory
	Path string `json:"path" yaml:"path"`
	// Format is derived from the file extension when empty
	Format types.FileType `json:"format,omitempty" yaml:"format,omitempty"`
	// Element is the XML record element, or the JSON key holding the record array
	Element   string            `json:"element,omitempty" yaml:"element,omitempty"`
	KeyFields []string          `json:"keyFields" yaml:"key_fields"`
	Mode      types.CollectMode `json:"mode" yaml:"mode"`
	Limit     int               `json:"limit,omitempty" yaml:"limit,omitempty"`
	Required  bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Encoding  charset.Encoding  `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	// Sheet selects the XLSX worksheet by name
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	// HeaderRows are skipped before the XLSX header row
	HeaderRows int `json:"headerRows,omitempty" yaml:"header_rows,omitempty"`
}

// Name identifies the feed in logs and error summaries
func (s Spec) Name() string {
	return string(s.Kind)
}

// DetectFormat maps a file extension to a feed format
func DetectFormat(path string) (types.FileType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return types.FileTypeXML, nil
	case ".json":
		return types.FileTypeJSON, nil
	case ".csv", ".txt":
		return types.FileTypeCSV, nil
	case ".xlsx":
		return types.FileTypeXLSX, nil
	default:
		return "", fmt.Errorf("unsupported feed extension %q", filepath.Ext(path))
	}
}

// Load reads the feed below dir. A missing file yields ErrSourceNotFound and
// an unparsable root ErrMalformedSource; callers decide whether the feed is
// required.
func Load(dir string, spec Spec) (*types.Collection, types.ReadStats, error) {
	path := spec.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	format := spec.Format
	if format == "" {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, types.ReadStats{}, fmt.Errorf("%w: %v", types.ErrSourceUnreadable, err)
		}
		format = detected
	}

	switch format {
	case types.FileTypeXML:
		opts := xml.DefaultReaderOptions()
		opts.ElementName = spec.Element
		opts.KeyFields = spec.KeyFields
		opts.Mode = spec.Mode
		opts.Limit = spec.Limit
		opts.Feed = spec.Name()
		if spec.Encoding != "" {
			opts.Encoding = spec.Encoding
		}
		return xml.NewReader(opts).ReadFile(path)

	case types.FileTypeJSON:
		return json.NewReader(json.ReaderOptions{
			ElementName: spec.Element,
			KeyFields:   spec.KeyFields,
			Mode:        spec.Mode,
			Limit:       spec.Limit,
			Feed:        spec.Name(),
		}).ReadFile(path)

	case types.FileTypeCSV:
		opts := csv.DefaultOptions()
		opts.KeyFields = spec.KeyFields
		opts.Mode = spec.Mode
		opts.Limit = spec.Limit
		opts.Feed = spec.Name()
		if spec.Encoding != "" {
			opts.Encoding = spec.Encoding
		}
		return csv.NewReader(opts).ReadFile(path)

	case types.FileTypeXLSX:
		opts := xlsx.DefaultOptions()
		opts.KeyFields = spec.KeyFields
		opts.Mode = spec.Mode
		opts.Limit = spec.Limit
		opts.Feed = spec.Name()
		opts.HeaderRowCount = spec.HeaderRows
		if spec.Sheet != "" {
			opts.SheetNameOrIndex = spec.Sheet
		}
		return xlsx.NewReader(opts).ReadFile(path)

	default:
		return nil, types.ReadStats{}, fmt.Errorf("%w: unsupported format %q", types.ErrSourceUnreadable, format)
	}
}
