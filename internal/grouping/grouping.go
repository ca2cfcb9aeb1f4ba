// Package grouping infers parent/variant structure from item-key suffixes.
package grouping

import (
	"github.com/rs/zerolog"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/tables"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// Suffix is the parsed variant part of an item key
type Suffix struct {
	Base      string
	Code      string
	ColorCode string
	Size      string
	Pattern   string
}

// Variant is one child of a variable product
type Variant struct {
	Key    string
	Record types.Record
	// Code is the item key with the base and separator removed
	Code string
	// Color is the resolved color name, empty when the suffix has no color
	Color     string
	ColorCode string
	Size      string
}

// Group is a variable product: an optional main record plus its variants
type Group struct {
	BaseSKU  string
	Main     types.Record
	HasMain  bool
	Variants []Variant
}

// Source returns the record attributes are taken from: the main record, or
// the first variant when the feed has no record for the base SKU
func (g Group) Source() types.Record {
	if g.HasMain {
		return g.Main
	}
	if len(g.Variants) > 0 {
		return g.Variants[0].Record
	}
	return nil
}

// Simple is a product without variants
type Simple struct {
	SKU    string
	Record types.Record
}

// Result holds the partition in first-appearance order of each base SKU
type Result struct {
	Simple   []Simple
	Variable []Group
}

// Engine applies the SKU suffix patterns of a lookup table set
type Engine struct {
	tables   *tables.Tables
	patterns []tables.SKUPattern
	logger   zerolog.Logger
}

// New creates a grouping engine
func New(t *tables.Tables, logger zerolog.Logger) *Engine {
	return &Engine{
		tables:   t,
		patterns: t.SKUPatterns(),
		logger:   logger,
	}
}

// Parse runs the patterns in priority order; the first match wins. A match
// whose base is itself a variant key is passed over, which keeps
// ExtractBaseSKU idempotent. Keys matching no pattern are their own base.
func (e *Engine) Parse(key string) Suffix {
	for _, p := range e.patterns {
		base, color, size, ok := p.Match(key)
		if !ok || len(base) >= len(key) || e.isVariantKey(base) {
			continue
		}
		return Suffix{
			Base:      base,
			Code:      key[len(base)+1:],
			ColorCode: color,
			Size:      size,
			Pattern:   p.Name,
		}
	}
	return Suffix{Base: key}
}

func (e *Engine) isVariantKey(key string) bool {
	for _, p := range e.patterns {
		if base, _, _, ok := p.Match(key); ok && len(base) < len(key) {
			return true
		}
	}
	return false
}

// ExtractBaseSKU returns the base SKU of an item key
func (e *Engine) ExtractBaseSKU(key string) string {
	return e.Parse(key).Base
}

// Group partitions all products into simple products and variable groups.
// A record is the main product of its group only if its key equals the base
// SKU exactly. Groups without variants are simple.
func (e *Engine) Group(products *types.Collection) Result {
	type bucket struct {
		main     types.Record
		hasMain  bool
		variants []Variant
	}

	var order []string
	buckets := make(map[string]*bucket)

	products.Each(func(key string, rec types.Record) bool {
		s := e.Parse(key)
		b, ok := buckets[s.Base]
		if !ok {
			b = &bucket{}
			buckets[s.Base] = b
			order = append(order, s.Base)
		}

		if key == s.Base {
			b.main = rec
			b.hasMain = true
			return true
		}

		v := Variant{
			Key:       key,
			Record:    rec,
			Code:      s.Code,
			ColorCode: s.ColorCode,
			Size:      s.Size,
		}
		if s.ColorCode != "" {
			v.Color = e.tables.ColorName(s.ColorCode)
		}
		if s.Size != "" {
			v.Size = e.tables.SizeName(s.Size)
		}
		b.variants = append(b.variants, v)
		return true
	})

	var result Result
	for _, base := range order {
		b := buckets[base]
		if len(b.variants) == 0 {
			result.Simple = append(result.Simple, Simple{SKU: base, Record: b.main})
			continue
		}

		if !b.hasMain {
			e.logger.Info().
				Str("base_sku", base).
				Str("source_key", b.variants[0].Key).
				Int("variants", len(b.variants)).
				Msg("No main product for group, using first variant")
		}

		result.Variable = append(result.Variable, Group{
			BaseSKU:  base,
			Main:     b.main,
			HasMain:  b.hasMain,
			Variants: b.variants,
		})
	}

	return result
}
