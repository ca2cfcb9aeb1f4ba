package resolver

// Fields lists the field names tried, in order, when reading auxiliary
// records. Suppliers override the lists that differ from the defaults.
type Fields struct {
	// Item holds the embedded item number used by the fallback scan
	Item []string `json:"item,omitempty"`

	PriceType    []string `json:"priceType,omitempty"`
	PriceAmount  []string `json:"priceAmount,omitempty"`
	RegularPrice []string `json:"regularPrice,omitempty"`
	SalePrice    []string `json:"salePrice,omitempty"`
	Currency     []string `json:"currency,omitempty"`

	StockType   []string `json:"stockType,omitempty"`
	StockAmount []string `json:"stockAmount,omitempty"`

	Markings          []string `json:"markings,omitempty"`
	MarkingTechnology []string `json:"markingTechnology,omitempty"`
	MarkingPosition   []string `json:"markingPosition,omitempty"`
	MarkingArea       []string `json:"markingArea,omitempty"`
	MarkingColors     []string `json:"markingColors,omitempty"`
}

// DefaultFields returns the field names shared by most suppliers
func DefaultFields() Fields {
	return Fields{
		Item: []string{"itemNumber", "item_number", "itemCode", "code", "sku", "@_itemNumber", "@_code"},

		PriceType:    []string{"type", "@_type", "priceType"},
		PriceAmount:  []string{"amount", "value", "price", "#text"},
		RegularPrice: []string{"listPrice", "regular_price", "price_netto", "price", "amount"},
		SalePrice:    []string{"discountPrice", "discount_price", "sale_price", "promo_price"},
		Currency:     []string{"currency", "@_currency", "currencyCode"},

		StockType:   []string{"type", "@_type", "stockType"},
		StockAmount: []string{"amount", "quantity", "qty", "available", "stock", "#text"},

		Markings:          []string{"markings.marking", "marking", "printingPositions.position"},
		MarkingTechnology: []string{"technology", "technologyCode", "technology_code", "@_technology"},
		MarkingPosition:   []string{"position", "place", "location", "name", "@_position"},
		MarkingArea:       []string{"maxPrintArea", "max_print_area", "max_area", "printArea", "size"},
		MarkingColors:     []string{"maxColors", "max_colors", "colors"},
	}
}

// merge fills empty lists of f from defaults
func (f Fields) merge(defaults Fields) Fields {
	pick := func(a, b []string) []string {
		if len(a) > 0 {
			return a
		}
		return b
	}
	return Fields{
		Item:              pick(f.Item, defaults.Item),
		PriceType:         pick(f.PriceType, defaults.PriceType),
		PriceAmount:       pick(f.PriceAmount, defaults.PriceAmount),
		RegularPrice:      pick(f.RegularPrice, defaults.RegularPrice),
		SalePrice:         pick(f.SalePrice, defaults.SalePrice),
		Currency:          pick(f.Currency, defaults.Currency),
		StockType:         pick(f.StockType, defaults.StockType),
		StockAmount:       pick(f.StockAmount, defaults.StockAmount),
		Markings:          pick(f.Markings, defaults.Markings),
		MarkingTechnology: pick(f.MarkingTechnology, defaults.MarkingTechnology),
		MarkingPosition:   pick(f.MarkingPosition, defaults.MarkingPosition),
		MarkingArea:       pick(f.MarkingArea, defaults.MarkingArea),
		MarkingColors:     pick(f.MarkingColors, defaults.MarkingColors),
	}
}
