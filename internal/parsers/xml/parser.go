package xml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/charset"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// Reader streams one record element at a time out of an XML feed. Only the
// subtree of the current element is held in memory.
type Reader struct {
	options ReaderOptions
}

// NewReader creates a new streaming XML reader with the given options
func NewReader(options ReaderOptions) *Reader {
	if options.AttributePrefix == "" {
		options.AttributePrefix = "@_"
	}
	if options.Encoding == "" {
		options.Encoding = charset.EncodingAuto
	}
	if options.Mode == "" {
		options.Mode = types.CollectSingle
	}
	return &Reader{options: options}
}

// ReadFile reads the feed at path into a collection keyed by the configured key fields
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

// Read reads records from src into a collection
func (r *Reader) Read(src io.Reader) (*types.Collection, types.ReadStats, error) {
	collection := types.NewCollection(r.options.Mode)
	stats, err := r.Stream(src, func(rec types.Record) error {
		key := r.recordKey(rec)
		if key == "" {
			return types.RecordError{
				Feed:    r.options.Feed,
				Field:   strings.Join(r.options.KeyFields, "|"),
				Message: "missing item key",
			}
		}
		collection.Add(key, rec)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	stats.Collected = collection.Len()
	return collection, stats, nil
}

// Stream calls fn for every element named ElementName, in document order.
// A RecordError returned by fn skips the element and is counted; any other
// error aborts the read.
func (r *Reader) Stream(src io.Reader, fn func(types.Record) error) (types.ReadStats, error) {
	var stats types.ReadStats

	utf8Src, _, err := charset.NewReader(src, r.options.Encoding)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", types.ErrSourceUnreadable, err)
	}

	decoder := xml.NewDecoder(utf8Src)
	decoder.Strict = false
	decoder.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		return input, nil // already transcoded to UTF-8
	}

	sawRoot := false
	for {
		if r.options.Limit > 0 && stats.Elements >= r.options.Limit {
			return stats, nil
		}

		token, err := decoder.Token()
		if err == io.EOF {
			if !sawRoot {
				return stats, fmt.Errorf("%w: no root element", types.ErrMalformedSource)
			}
			return stats, nil
		}
		if err != nil {
			if !sawRoot {
				return stats, fmt.Errorf("%w: %v", types.ErrMalformedSource, err)
			}
			// Keep what was read before the syntax error
			stats.Truncated = true
			return stats, nil
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Local != r.options.ElementName {
			continue
		}

		stats.Elements++
		rec, err := r.decodeElement(decoder, start)
		if err != nil {
			stats.Truncated = true
			stats.Skipped++
			stats.Errors.Add(types.RecordError{Feed: r.options.Feed, Message: err.Error()})
			return stats, nil
		}

		if err := fn(rec); err != nil {
			var recErr types.RecordError
			if errors.As(err, &recErr) {
				stats.Skipped++
				stats.Errors.Add(recErr)
				continue
			}
			return stats, err
		}
	}
}

// decodeElement decodes the subtree opened by start. Text-only elements
// become strings, everything else becomes a record; attributes are stored
// with the attribute prefix and mixed text under "#text".
func (r *Reader) decodeElement(decoder *xml.Decoder, start xml.StartElement) (types.Record, error) {
	value, err := r.decodeValue(decoder, start)
	if err != nil {
		return nil, err
	}
	if rec := value.Record(); rec != nil {
		return rec, nil
	}
	return types.Record{types.TextKey: value}, nil
}

func (r *Reader) decodeValue(decoder *xml.Decoder, start xml.StartElement) (types.Value, error) {
	result := make(types.Record)
	for _, attr := range start.Attr {
		result[r.options.AttributePrefix+attr.Name.Local] = types.StringValue(attr.Value)
	}

	var text strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return types.Value{}, fmt.Errorf("unexpected end of file inside <%s>", start.Name.Local)
			}
			return types.Value{}, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			child, err := r.decodeValue(decoder, t)
			if err != nil {
				return types.Value{}, err
			}
			result.Append(t.Name.Local, child)

		case xml.CharData:
			text.Write(t)

		case xml.EndElement:
			content := strings.TrimSpace(text.String())
			if len(result) == 0 {
				return types.StringValue(content), nil
			}
			if content != "" {
				result[types.TextKey] = types.StringValue(content)
			}
			return types.RecordValue(result), nil
		}
	}
}

// recordKey returns the first non-empty key field value
func (r *Reader) recordKey(rec types.Record) string {
	return rec.String(r.options.KeyFields...)
}
