// Package resolver joins auxiliary supplier datasets (prices, stock,
// labeling, printing prices) onto product item keys.
package resolver

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// Stock type discriminators
const (
	StockCentral  = "central_stock"
	StockIncoming = "incoming_to_central_stock"
)

// Price is the union of all price entries of one item
type Price struct {
	Regular  decimal.NullDecimal
	Sale     decimal.NullDecimal
	Currency string
}

// Stock is the resolved stock of one item. Incoming stock is reported
// separately and never added to Quantity.
type Stock struct {
	Quantity int
	Incoming int
	Found    bool
}

// Marking is one labeling position of an item
type Marking struct {
	Technology string `json:"technology"`
	Position   string `json:"position,omitempty"`
	MaxArea    string `json:"max_area,omitempty"`
	MaxColors  string `json:"max_colors,omitempty"`
}

// Sources are the auxiliary datasets of one supplier run; any may be nil
type Sources struct {
	Prices   *types.Collection
	Stock    *types.Collection
	Labeling *types.Collection
	Printing PrintingPrices
}

// Resolver looks up auxiliary records by item key: direct key lookup first,
// then the embedded item-number field of every record.
type Resolver struct {
	sources Sources
	fields  Fields

	mu      sync.Mutex
	indexes map[*types.Collection]map[string][]types.Record
	errors  types.ErrorSummary
}

// New creates a resolver; empty field lists fall back to DefaultFields
func New(sources Sources, fields Fields) *Resolver {
	return &Resolver{
		sources: sources,
		fields:  fields.merge(DefaultFields()),
		indexes: make(map[*types.Collection]map[string][]types.Record),
	}
}

// Errors returns the entries skipped because they could not be converted
func (r *Resolver) Errors() types.ErrorSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}

func (r *Resolver) recordError(feed types.FeedKind, key, field, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors.Add(types.RecordError{Feed: string(feed), ItemKey: key, Field: field, Message: msg})
}

// lookup returns every record of coll for key
func (r *Resolver) lookup(coll *types.Collection, key string) []types.Record {
	if coll == nil || key == "" {
		return nil
	}
	if recs := coll.All(key); len(recs) > 0 {
		return recs
	}
	return r.scan(coll, key)
}

// scan is the fallback for feeds keyed by something other than the item
// number. The table is walked once and indexed by the embedded item field.
func (r *Resolver) scan(coll *types.Collection, key string) []types.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, ok := r.indexes[coll]
	if !ok {
		index = make(map[string][]types.Record)
		for _, k := range coll.Keys() {
			for _, rec := range coll.All(k) {
				if item := rec.String(r.fields.Item...); item != "" {
					index[item] = append(index[item], rec)
				}
			}
		}
		r.indexes[coll] = index
	}
	return index[key]
}

// ResolvePrice classifies price entries by their type discriminator:
// "listPrice" is the regular price, "discountPrice" the sale price. Entries
// without a type carry both prices as separate fields. ok is false when the
// item has no usable price entry.
func (r *Resolver) ResolvePrice(key string) (Price, bool) {
	var price Price

	for _, rec := range r.lookup(r.sources.Prices, key) {
		if price.Currency == "" {
			price.Currency = rec.String(r.fields.Currency...)
		}

		switch normalizeType(rec.String(r.fields.PriceType...)) {
		case "listprice", "list", "regular", "regularprice":
			r.setPrice(&price.Regular, rec, r.fields.PriceAmount, key)
		case "discountprice", "discount", "sale", "saleprice", "promo":
			r.setPrice(&price.Sale, rec, r.fields.PriceAmount, key)
		case "":
			r.setPrice(&price.Regular, rec, r.fields.RegularPrice, key)
			r.setPrice(&price.Sale, rec, r.fields.SalePrice, key)
		}
	}

	return price, price.Regular.Valid || price.Sale.Valid
}

// setPrice fills an empty slot; the first valid entry of each type wins
func (r *Resolver) setPrice(slot *decimal.NullDecimal, rec types.Record, paths []string, key string) {
	if slot.Valid {
		return
	}
	raw := rec.String(paths...)
	if raw == "" {
		return
	}
	d, err := ParseAmount(raw)
	if err != nil {
		r.recordError(types.FeedPrices, key, strings.Join(paths, "|"), err.Error())
		return
	}
	*slot = decimal.NewNullDecimal(d)
}

// ResolveStock sums stock entries. "central_stock" entries are authoritative
// when present; otherwise all untyped entries are summed. Incoming stock is
// tracked in Incoming only.
func (r *Resolver) ResolveStock(key string) Stock {
	var (
		stock      Stock
		central    int
		hasCentral bool
		other      int
	)

	for _, rec := range r.lookup(r.sources.Stock, key) {
		raw := rec.String(r.fields.StockAmount...)
		if raw == "" {
			continue
		}
		qty, err := ParseQuantity(raw)
		if err != nil {
			r.recordError(types.FeedStock, key, strings.Join(r.fields.StockAmount, "|"), err.Error())
			continue
		}
		stock.Found = true

		switch strings.ToLower(rec.String(r.fields.StockType...)) {
		case StockCentral:
			central += qty
			hasCentral = true
		case StockIncoming:
			stock.Incoming += qty
		default:
			other += qty
		}
	}

	if hasCentral {
		stock.Quantity = central
	} else {
		stock.Quantity = other
	}
	return stock
}

// ResolveMarkings returns the labeling positions of an item, in feed order
func (r *Resolver) ResolveMarkings(key string) []Marking {
	var out []Marking
	for _, rec := range r.lookup(r.sources.Labeling, key) {
		entries := rec.List(r.fields.Markings...)
		if len(entries) == 0 {
			entries = []types.Record{rec}
		}
		for _, e := range entries {
			m := Marking{
				Technology: e.String(r.fields.MarkingTechnology...),
				Position:   e.String(r.fields.MarkingPosition...),
				MaxArea:    e.String(r.fields.MarkingArea...),
				MaxColors:  e.String(r.fields.MarkingColors...),
			}
			if m.Technology == "" && m.Position == "" {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

// PrintingPrices returns the price tables of the given technology codes
func (r *Resolver) PrintingPrices(codes []string) PrintingPrices {
	if len(r.sources.Printing) == 0 {
		return nil
	}
	return r.sources.Printing.For(codes)
}

func normalizeType(t string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(t))
}
