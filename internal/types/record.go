package types

import (
	"sort"
	"strings"
)

// ValueKind tags which member of the Value union is set
type ValueKind int

const (
	KindString ValueKind = iota
	KindRecord
	KindList
)

// TextKey holds element text when an element also carries attributes or children
const TextKey = "#text"

// Value is a single field value of a raw feed record: a string, a nested
// record or an ordered list of records
type Value struct {
	kind ValueKind
	str  string
	rec  Record
	list []Record
}

// StringValue wraps s as a Value
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// RecordValue wraps r as a Value
func RecordValue(r Record) Value {
	return Value{kind: KindRecord, rec: r}
}

// ListValue wraps l as a Value
func ListValue(l []Record) Value {
	return Value{kind: KindList, list: l}
}

// Kind returns the union tag
func (v Value) Kind() ValueKind {
	return v.kind
}

// Text returns the textual content of the value. Records yield their #text
// field, lists yield the text of their first element.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str)
	case KindRecord:
		if t, ok := v.rec[TextKey]; ok {
			return t.Text()
		}
		return ""
	case KindList:
		for _, r := range v.list {
			if t := RecordValue(r).Text(); t != "" {
				return t
			}
		}
	}
	return ""
}

// Record returns the nested record, or nil when the value is not a record
func (v Value) Record() Record {
	if v.kind == KindRecord {
		return v.rec
	}
	return nil
}

// Records returns the value as a list: a list as-is, a record as a
// one-element list, a string as a one-element list holding #text
func (v Value) Records() []Record {
	switch v.kind {
	case KindList:
		return v.list
	case KindRecord:
		return []Record{v.rec}
	default:
		if strings.TrimSpace(v.str) == "" {
			return nil
		}
		return []Record{{TextKey: v}}
	}
}

// Record is one raw feed element. Field sets vary per supplier and even per
// element; records are never mutated after the reader produced them.
type Record map[string]Value

// Append adds a child value under name, turning repeated names into a list
func (r Record) Append(name string, v Value) {
	existing, ok := r[name]
	if !ok {
		r[name] = v
		return
	}
	list := existing.Records()
	if existing.kind == KindString && len(list) == 0 {
		list = []Record{{TextKey: existing}}
	}
	r[name] = ListValue(append(list, v.Records()...))
}

// Lookup resolves a dot-separated path. Segment names match exactly first,
// then case-insensitively. Traversing a list descends into its first element.
func (r Record) Lookup(path string) (Value, bool) {
	if r == nil || path == "" {
		return Value{}, false
	}
	parts := strings.Split(path, ".")
	current := r
	for i, part := range parts {
		v, ok := current.field(part)
		if !ok {
			return Value{}, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		switch v.kind {
		case KindRecord:
			current = v.rec
		case KindList:
			if len(v.list) == 0 {
				return Value{}, false
			}
			current = v.list[0]
		default:
			return Value{}, false
		}
	}
	return Value{}, false
}

func (r Record) field(name string) (Value, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	for _, k := range r.Keys() {
		if strings.EqualFold(k, name) {
			return r[k], true
		}
	}
	return Value{}, false
}

// String returns the first non-empty text found among the given paths
func (r Record) String(paths ...string) string {
	for _, p := range paths {
		if v, ok := r.Lookup(p); ok {
			if t := v.Text(); t != "" {
				return t
			}
		}
	}
	return ""
}

// Has reports whether any of the paths resolves to non-empty text
func (r Record) Has(paths ...string) bool {
	return r.String(paths...) != ""
}

// List returns the records found at the first path that resolves
func (r Record) List(paths ...string) []Record {
	for _, p := range paths {
		if v, ok := r.Lookup(p); ok {
			if l := v.Records(); len(l) > 0 {
				return l
			}
		}
	}
	return nil
}

// Values resolves a dot-separated path like Lookup, but fans out across
// every element of the lists it traverses
func (r Record) Values(path string) []Value {
	if r == nil || path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	current := []Record{r}
	for i, part := range parts {
		var next []Record
		var values []Value
		for _, rec := range current {
			v, ok := rec.field(part)
			if !ok {
				continue
			}
			if i == len(parts)-1 {
				values = append(values, v)
				continue
			}
			switch v.kind {
			case KindRecord:
				next = append(next, v.rec)
			case KindList:
				next = append(next, v.list...)
			}
		}
		if i == len(parts)-1 {
			return values
		}
		current = next
	}
	return nil
}

// Strings returns the text of every element at the first path that resolves
// to at least one non-empty string
func (r Record) Strings(paths ...string) []string {
	for _, p := range paths {
		var out []string
		for _, v := range r.Values(p) {
			for _, item := range v.Records() {
				if t := RecordValue(item).Text(); t != "" {
					out = append(out, t)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// Keys returns the field names in sorted order
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToInterface converts the record to plain maps/slices/strings, used for
// JSON dumps of raw records
func (r Record) ToInterface() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for k, v := range r {
		out[k] = v.toInterface()
	}
	return out
}

func (v Value) toInterface() interface{} {
	switch v.kind {
	case KindRecord:
		return v.rec.ToInterface()
	case KindList:
		items := make([]interface{}, 0, len(v.list))
		for _, r := range v.list {
			items = append(items, r.ToInterface())
		}
		return items
	default:
		return v.str
	}
}
