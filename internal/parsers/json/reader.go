// Package json streams records out of JSON feeds: either a top-level array of
// objects or an array held under a named key somewhere in the document.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// ReaderOptions configures the streaming JSON reader
type ReaderOptions struct {
	// ElementName is the key holding the record array; empty means the
	// document itself is the array
	ElementName string            `json:"elementName,omitempty"`
	KeyFields   []string          `json:"keyFields"`
	Mode        types.CollectMode `json:"mode"`
	Limit       int               `json:"limit,omitempty"`
	Feed        string            `json:"feed,omitempty"`
}

// Reader decodes one array element at a time
type Reader struct {
	options ReaderOptions
}

// NewReader creates a new streaming JSON reader
func NewReader(options ReaderOptions) *Reader {
	if options.Mode == "" {
		options.Mode = types.CollectSingle
	}
	return &Reader{options: options}
}

// ReadFile reads the feed at path into a collection
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
	var stats types.ReadStats

	dec := json.NewDecoder(src)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", types.ErrMalformedSource, err)
	}
	found, err := r.seek(dec, tok, r.options.ElementName == "")
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", types.ErrMalformedSource, err)
	}
	if !found {
		return nil, stats, fmt.Errorf("%w: array %q not found", types.ErrMalformedSource, r.options.ElementName)
	}

	collection := types.NewCollection(r.options.Mode)
	for dec.More() {
		if r.options.Limit > 0 && stats.Elements >= r.options.Limit {
			break
		}

		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			// Keep what was read before the syntax error
			stats.Truncated = true
			break
		}
		stats.Elements++

		obj, ok := raw.(map[string]interface{})
		if !ok {
			stats.Skipped++
			stats.Errors.Add(types.RecordError{Feed: r.options.Feed, Message: "array element is not an object"})
			continue
		}

		rec := toRecord(obj)
		key := rec.String(r.options.KeyFields...)
		if key == "" {
			stats.Skipped++
			stats.Errors.Add(types.RecordError{
				Feed:    r.options.Feed,
				Field:   strings.Join(r.options.KeyFields, "|"),
				Message: "missing item key",
			})
			continue
		}
		collection.Add(key, rec)
	}

	stats.Collected = collection.Len()
	return collection, stats, nil
}

// seek walks the token stream until the decoder sits just inside the record
// array. tok is the token that opens the current value.
func (r *Reader) seek(dec *json.Decoder, tok json.Token, topLevel bool) (bool, error) {
	delim, ok := tok.(json.Delim)
	if !ok {
		return false, nil
	}

	switch delim {
	case '[':
		if topLevel {
			return true, nil
		}
		for dec.More() {
			t, err := dec.Token()
			if err != nil {
				return false, err
			}
			if found, err := r.seek(dec, t, false); err != nil || found {
				return found, err
			}
		}
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return false, err
			}
			valTok, err := dec.Token()
			if err != nil {
				return false, err
			}
			if key, _ := keyTok.(string); key == r.options.ElementName && valTok == json.Delim('[') {
				return true, nil
			}
			if found, err := r.seek(dec, valTok, false); err != nil || found {
				return found, err
			}
		}
	default:
		return false, nil
	}

	// closing delimiter of the skipped container
	_, err := dec.Token()
	return false, err
}

func toRecord(obj map[string]interface{}) types.Record {
	rec := make(types.Record, len(obj))
	for k, v := range obj {
		if value, ok := toValue(v); ok {
			rec[k] = value
		}
	}
	return rec
}

func toValue(v interface{}) (types.Value, bool) {
	switch t := v.(type) {
	case nil:
		return types.Value{}, false
	case string:
		return types.StringValue(t), true
	case json.Number:
		return types.StringValue(t.String()), true
	case bool:
		return types.StringValue(strconv.FormatBool(t)), true
	case map[string]interface{}:
		return types.RecordValue(toRecord(t)), true
	case []interface{}:
		list := make([]types.Record, 0, len(t))
		for _, item := range t {
			if value, ok := toValue(item); ok {
				list = append(list, value.Records()...)
			}
		}
		return types.ListValue(list), true
	default:
		return types.StringValue(fmt.Sprint(t)), true
	}
}
