package resolver

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// PriceRange is one row of a printing technology price table
type PriceRange struct {
	QuantityFrom int             `json:"quantity_from"`
	QuantityTo   int             `json:"quantity_to,omitempty"`
	Colors       int             `json:"colors,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	SetupCost    decimal.Decimal `json:"setup_cost"`
}

// PrintingPrices maps a technology code to its price ranges
type PrintingPrices map[string][]PriceRange

// LoadPrintingPrices reads a printing price table file. The document is an
// object of technology code -> array of ranges, optionally wrapped in a
// "technologies" key.
func LoadPrintingPrices(path string) (PrintingPrices, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", types.ErrSourceUnreadable, path, err)
	}
	return ParsePrintingPrices(data)
}

// ParsePrintingPrices parses printing price table JSON
func ParsePrintingPrices(data []byte) (PrintingPrices, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid printing price JSON", types.ErrMalformedSource)
	}

	root := gjson.ParseBytes(data)
	if wrapped := root.Get("technologies"); wrapped.IsObject() {
		root = wrapped
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: printing prices must be an object", types.ErrMalformedSource)
	}

	out := make(PrintingPrices)
	root.ForEach(func(code, ranges gjson.Result) bool {
		if !ranges.IsArray() {
			return true
		}
		ranges.ForEach(func(_, r gjson.Result) bool {
			out[code.String()] = append(out[code.String()], PriceRange{
				QuantityFrom: int(firstOf(r, "quantity_from", "from", "qty_from").Int()),
				QuantityTo:   int(firstOf(r, "quantity_to", "to", "qty_to").Int()),
				Colors:       int(firstOf(r, "colors", "colours").Int()),
				UnitPrice:    amountOf(firstOf(r, "unit_price", "price")),
				SetupCost:    amountOf(firstOf(r, "setup_cost", "setup")),
			})
			return true
		})
		sort.SliceStable(out[code.String()], func(i, j int) bool {
			a, b := out[code.String()][i], out[code.String()][j]
			if a.Colors != b.Colors {
				return a.Colors < b.Colors
			}
			return a.QuantityFrom < b.QuantityFrom
		})
		return true
	})

	return out, nil
}

// For returns the tables of the given technology codes that exist
func (p PrintingPrices) For(codes []string) PrintingPrices {
	out := make(PrintingPrices)
	for _, c := range codes {
		if ranges, ok := p[c]; ok {
			out[c] = ranges
		}
	}
	return out
}

// Codes returns the technology codes in sorted order
func (p PrintingPrices) Codes() []string {
	codes := make([]string, 0, len(p))
	for c := range p {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func firstOf(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func amountOf(r gjson.Result) decimal.Decimal {
	if !r.Exists() {
		return decimal.Zero
	}
	d, err := ParseAmount(r.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
