package types

// CollectMode controls how records sharing one item key are kept
type CollectMode string

const (
	// CollectSingle keeps the last record read for a key
	CollectSingle CollectMode = "single"
	// CollectMulti keeps every record read for a key, in read order
	CollectMulti CollectMode = "multi"
)

// Collection maps item keys to the records read for them. Keys are kept in
// first-seen order so iteration is stable across runs.
type Collection struct {
	mode    CollectMode
	keys    []string
	records map[string][]Record
}

// NewCollection creates an empty collection
func NewCollection(mode CollectMode) *Collection {
	if mode == "" {
		mode = CollectSingle
	}
	return &Collection{
		mode:    mode,
		records: make(map[string][]Record),
	}
}

// Mode returns the collect mode
func (c *Collection) Mode() CollectMode {
	return c.mode
}

// Add stores rec under key. In single mode a duplicate key replaces the
// previous record but keeps the key's original position.
func (c *Collection) Add(key string, rec Record) {
	existing, ok := c.records[key]
	if !ok {
		c.keys = append(c.keys, key)
	}
	if c.mode == CollectSingle {
		c.records[key] = []Record{rec}
		return
	}
	c.records[key] = append(existing, rec)
}

// Get returns the record for key. In multi mode it is the first one read.
func (c *Collection) Get(key string) (Record, bool) {
	if c == nil {
		return nil, false
	}
	recs := c.records[key]
	if len(recs) == 0 {
		return nil, false
	}
	return recs[0], true
}

// All returns every record stored for key
func (c *Collection) All(key string) []Record {
	if c == nil {
		return nil
	}
	return c.records[key]
}

// Has reports whether key is present
func (c *Collection) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.records[key]
	return ok
}

// Keys returns keys in first-seen order
func (c *Collection) Keys() []string {
	if c == nil {
		return nil
	}
	return c.keys
}

// Len returns the number of distinct keys
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Each calls fn for every stored record, keys in first-seen order. Iteration
// stops when fn returns false.
func (c *Collection) Each(fn func(key string, rec Record) bool) {
	if c == nil {
		return
	}
	for _, k := range c.keys {
		for _, r := range c.records[k] {
			if !fn(k, r) {
				return
			}
		}
	}
}
