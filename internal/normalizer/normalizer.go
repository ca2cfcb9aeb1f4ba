// Package normalizer maps supplier records onto the canonical product model.
package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/categories"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/grouping"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/resolver"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/tables"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// Attribute names of the canonical output
const (
	AttrMaterial       = "Materiał"
	AttrDimensions     = "Wymiary"
	AttrWeight         = "Waga"
	AttrColor          = "Kolor"
	AttrSize           = "Rozmiar"
	AttrMinOrder       = "Minimalna ilość zamówienia"
	AttrPackaging      = "Opakowanie"
	AttrCertifications = "Certyfikaty"
	AttrTechnologies   = "Technologie znakowania"
	AttrCountry        = "Kraj pochodzenia"
	AttrBrand          = "Marka"
)

// Meta keys of the canonical output
const (
	MetaSupplier        = "_supplier"
	MetaSupplierSKU     = "_supplier_sku"
	MetaCurrency        = "_currency"
	MetaIncomingStock   = "_incoming_stock"
	MetaVariantCode     = "_variant_code"
	MetaPrintingPrices  = "_printing_prices"
	MetaMarkingPosition = "_marking_positions"
)

// Options are the per-run defaults of the normalizer
type Options struct {
	Supplier            string
	DefaultRegularPrice decimal.Decimal
	DefaultCategory     string
}

// Input is everything known about one product before normalization
type Input struct {
	Record        types.Record
	SKU           string
	Price         resolver.Price
	HasPrice      bool
	Stock         resolver.Stock
	CategoryPaths []string
	Markings      []resolver.Marking
}

// Normalizer builds NormalizedProducts. It holds no per-product state.
type Normalizer struct {
	tables     *tables.Tables
	resolver   *resolver.Resolver
	categories map[string]categories.Entry
	fields     Fields
	opts       Options
	logger     zerolog.Logger
}

// New creates a normalizer. categoryMap may be nil.
func New(t *tables.Tables, r *resolver.Resolver, categoryMap map[string]categories.Entry, fields Fields, opts Options, logger zerolog.Logger) *Normalizer {
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = "Inne"
	}
	if opts.DefaultRegularPrice.IsZero() {
		opts.DefaultRegularPrice = decimal.RequireFromString("50.00")
	}
	return &Normalizer{
		tables:     t,
		resolver:   r,
		categories: categoryMap,
		fields:     fields.merge(DefaultFields()),
		opts:       opts,
		logger:     logger,
	}
}

// Resolve gathers the cross-referenced data of one item
func (n *Normalizer) Resolve(rec types.Record, sku string) Input {
	in := Input{Record: rec, SKU: sku}
	in.Price, in.HasPrice = n.resolver.ResolvePrice(sku)
	in.Stock = n.resolver.ResolveStock(sku)
	in.Markings = n.resolver.ResolveMarkings(sku)
	in.CategoryPaths = n.CategoryPaths(rec)
	return in
}

// Simple normalizes a product without variants
func (n *Normalizer) Simple(s grouping.Simple) types.NormalizedProduct {
	return n.Normalize(n.Resolve(s.Record, s.SKU))
}

// Normalize builds a simple product from resolved input
func (n *Normalizer) Normalize(in Input) types.NormalizedProduct {
	rec := in.Record
	name := n.Name(rec, in.SKU)

	p := types.NormalizedProduct{
		SKU:           in.SKU,
		Type:          types.ProductSimple,
		Name:          name,
		Description:   n.Description(rec, name),
		CategoryPaths: in.CategoryPaths,
		Images:        n.Images(rec),
		Meta:          n.baseMeta(in.SKU),
	}

	n.applyPrice(&p, rec, in.Price, in.HasPrice)
	n.applyStock(&p, rec, in.Stock)

	p.Attributes = n.attributes(rec, name, in.Markings, nil)
	n.applyMarkings(&p, in.Markings)
	return p
}

// Variable normalizes a group into the parent product followed by one
// variation per variant, in group order
func (n *Normalizer) Variable(g grouping.Group) []types.NormalizedProduct {
	source := g.Source()
	name := n.Name(source, g.BaseSKU)

	parentIn := n.Resolve(source, g.BaseSKU)
	if !g.HasMain {
		// No record for the base SKU; resolve through the first variant
		first := g.Variants[0].Key
		if !parentIn.HasPrice {
			parentIn.Price, parentIn.HasPrice = n.resolver.ResolvePrice(first)
		}
		if len(parentIn.Markings) == 0 {
			parentIn.Markings = n.resolver.ResolveMarkings(first)
		}
	}

	axes := n.variationAxes(g)

	parent := types.NormalizedProduct{
		SKU:           g.BaseSKU,
		Type:          types.ProductVariable,
		Name:          name,
		Description:   n.Description(source, name),
		CategoryPaths: parentIn.CategoryPaths,
		Images:        n.Images(source),
		Meta:          n.baseMeta(g.BaseSKU),
	}
	n.applyPrice(&parent, source, parentIn.Price, parentIn.HasPrice)
	parent.Attributes = n.attributes(source, name, parentIn.Markings, axes)
	n.applyMarkings(&parent, parentIn.Markings)

	out := make([]types.NormalizedProduct, 0, len(g.Variants)+1)
	out = append(out, parent)

	total := 0
	for i, v := range g.Variants {
		variation := n.variation(v, i, parent, axes)
		total += variation.StockQuantity
		out = append(out, variation)
	}

	// Parent stock is the sum of its variations
	out[0].StockQuantity = total
	out[0].StockStatus = stockStatus(total)
	return out
}

func (n *Normalizer) variation(v grouping.Variant, index int, parent types.NormalizedProduct, axes []axis) types.NormalizedProduct {
	rec := v.Record
	name := n.Name(rec, "")
	if name == "" {
		name = parent.Name
	}

	p := types.NormalizedProduct{
		SKU:         v.Key,
		Type:        types.ProductVariation,
		ParentSKU:   parent.SKU,
		Name:        name,
		Description: n.Description(rec, name),
		Images:      n.Images(rec),
		Meta:        n.baseMeta(v.Key),
	}
	p.Meta[MetaVariantCode] = v.Code

	price, ok := n.resolver.ResolvePrice(v.Key)
	if !ok && !rec.Has(n.fields.Price...) && parent.Price.Valid {
		// Variants without own price entries inherit the parent's
		price, ok = resolver.Price{Regular: parent.Price, Sale: parent.SalePrice, Currency: parent.Meta[MetaCurrency]}, true
	}
	n.applyPrice(&p, rec, price, ok)
	n.applyStock(&p, rec, n.resolver.ResolveStock(v.Key))

	for _, a := range axes {
		value := a.values[index]
		if value == "" || !a.varies {
			continue
		}
		p.Attributes = append(p.Attributes, types.Attribute{
			Name:        a.name,
			Value:       value,
			IsVariation: true,
			Visible:     true,
		})
	}
	return p
}

// axis is one attribute that may distinguish the variants of a group
type axis struct {
	name     string
	values   []string // per variant, in group order
	distinct []string
	varies   bool
}

func (n *Normalizer) variationAxes(g grouping.Group) []axis {
	color := axis{name: AttrColor, values: make([]string, len(g.Variants))}
	size := axis{name: AttrSize, values: make([]string, len(g.Variants))}

	for i, v := range g.Variants {
		color.values[i] = v.Color
		if color.values[i] == "" {
			color.values[i] = v.Record.String(n.fields.Color...)
		}
		size.values[i] = v.Size
		if size.values[i] == "" {
			size.values[i] = v.Record.String(n.fields.Size...)
		}
	}

	var out []axis
	for _, a := range []axis{color, size} {
		a.distinct = dedupe(a.values)
		if len(a.distinct) == 0 {
			continue
		}
		// Only values that differ across at least two variants drive variations
		a.varies = len(a.distinct) >= 2
		out = append(out, a)
	}
	return out
}

// Name joins the name and design name fields; without either it falls back
// to "Produkt <identifier>"
func (n *Normalizer) Name(rec types.Record, identifier string) string {
	var parts []string
	if v := rec.String(n.fields.Name...); v != "" {
		parts = append(parts, v)
	}
	if v := rec.String(n.fields.DesignName...); v != "" {
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		if identifier == "" {
			return ""
		}
		return "Produkt " + identifier
	}
	return strings.Join(parts, " ")
}

// Description joins the supplier description and the synthesized lines with
// blank lines, omitting lines without source data
func (n *Normalizer) Description(rec types.Record, name string) string {
	var blocks []string
	if v := rec.String(n.fields.Description...); v != "" {
		blocks = append(blocks, v)
	}
	if dims, ok := n.dimensions(rec); ok {
		blocks = append(blocks, "Wymiary: "+dims)
	}
	if w := n.weight(rec); w != "" {
		blocks = append(blocks, "Waga: "+w)
	}
	if m, ok := n.material(rec, name); ok {
		blocks = append(blocks, "Materiał: "+m)
	}
	if moq := rec.String(n.fields.MinOrder...); moq != "" {
		blocks = append(blocks, "Minimalna ilość zamówienia: "+moq+" szt.")
	}
	return strings.Join(blocks, "\n\n")
}

// CategoryPaths applies the category cascade: embedded category names, then
// category ids looked up in the flattened tree, then name keywords, then the
// default category
func (n *Normalizer) CategoryPaths(rec types.Record) []string {
	if embedded := dedupe(rec.Strings(n.fields.Categories...)); len(embedded) > 0 {
		return embedded
	}

	if len(n.categories) > 0 {
		var paths []string
		for _, id := range rec.Strings(n.fields.CategoryIDs...) {
			if e, ok := n.categories[id]; ok && e.Path != "" {
				paths = append(paths, e.Path)
			}
		}
		if paths = dedupe(paths); len(paths) > 0 {
			return paths
		}
	}

	if c, ok := n.tables.CategoryForName(rec.String(n.fields.Name...)); ok {
		path := c.Primary
		if c.Secondary != "" && c.Secondary != c.Primary {
			path += categories.PathSeparator + c.Secondary
		}
		return []string{path}
	}

	return []string{n.opts.DefaultCategory}
}

// Images collects image URLs from every configured path, deduplicated in
// first-seen order
func (n *Normalizer) Images(rec types.Record) []string {
	var urls []string
	for _, path := range n.fields.Images {
		for _, v := range rec.Values(path) {
			for _, item := range v.Records() {
				u := item.String(types.TextKey, "url", "src", "@_src", "@_url", "href")
				if u != "" {
					urls = append(urls, u)
				}
			}
		}
	}
	return dedupe(urls)
}

// attributes builds the attribute list in canonical order. axes replace the
// plain color attribute for variable products.
func (n *Normalizer) attributes(rec types.Record, name string, markings []resolver.Marking, axes []axis) []types.Attribute {
	var attrs []types.Attribute
	add := func(name, value string) {
		if value == "" {
			return
		}
		attrs = append(attrs, types.Attribute{Name: name, Value: value, Visible: true})
	}

	if m, ok := n.material(rec, name); ok {
		add(AttrMaterial, m)
	}
	if dims, ok := n.dimensions(rec); ok {
		add(AttrDimensions, dims)
	} else {
		add(AttrDimensions, rec.String(n.fields.Dimensions...))
	}
	add(AttrWeight, n.weight(rec))

	if axes == nil {
		add(AttrColor, strings.Join(dedupe(rec.Strings(n.fields.Color...)), ", "))
	}
	for _, a := range axes {
		attrs = append(attrs, types.Attribute{
			Name:        a.name,
			Value:       strings.Join(a.distinct, " | "),
			IsVariation: a.varies,
			Visible:     true,
		})
	}

	if moq := rec.String(n.fields.MinOrder...); moq != "" {
		add(AttrMinOrder, moq+" szt.")
	}
	add(AttrPackaging, rec.String(n.fields.Packaging...))
	add(AttrCertifications, strings.Join(dedupe(rec.Strings(n.fields.Certifications...)), ", "))
	add(AttrTechnologies, strings.Join(n.technologyNames(markings), ", "))
	add(AttrCountry, rec.String(n.fields.Country...))
	add(AttrBrand, rec.String(n.fields.Brand...))
	return attrs
}

func (n *Normalizer) applyPrice(p *types.NormalizedProduct, rec types.Record, price resolver.Price, ok bool) {
	if !ok {
		// Some feeds carry the price on the product record itself
		if raw := rec.String(n.fields.Price...); raw != "" {
			if d, err := resolver.ParseAmount(raw); err == nil {
				price, ok = resolver.Price{Regular: decimal.NewNullDecimal(d)}, true
			} else {
				n.logger.Warn().Str("item_key", p.SKU).Str("field", "price").Str("value", raw).Msg("Unparsable product price")
			}
		}
	}

	switch {
	case ok && price.Regular.Valid:
		p.Price = price.Regular
		p.SalePrice = price.Sale
	case ok && price.Sale.Valid:
		p.Price = price.Sale
	default:
		p.Price = decimal.NewNullDecimal(n.opts.DefaultRegularPrice)
	}

	if price.Currency != "" {
		p.Meta[MetaCurrency] = price.Currency
	}
}

func (n *Normalizer) applyStock(p *types.NormalizedProduct, rec types.Record, stock resolver.Stock) {
	qty := stock.Quantity
	if !stock.Found {
		if raw := rec.String(n.fields.Stock...); raw != "" {
			if v, err := resolver.ParseQuantity(raw); err == nil {
				qty = v
			}
		}
	}
	p.StockQuantity = qty
	p.StockStatus = stockStatus(qty)
	if stock.Incoming > 0 {
		p.Meta[MetaIncomingStock] = strconv.Itoa(stock.Incoming)
	}
}

func (n *Normalizer) applyMarkings(p *types.NormalizedProduct, markings []resolver.Marking) {
	if len(markings) == 0 {
		return
	}
	if data, err := json.Marshal(markings); err == nil {
		p.Meta[MetaMarkingPosition] = string(data)
	}

	codes := make([]string, 0, len(markings))
	for _, m := range markings {
		if m.Technology != "" {
			codes = append(codes, m.Technology)
		}
	}
	if pp := n.resolver.PrintingPrices(dedupe(codes)); len(pp) > 0 {
		if data, err := json.Marshal(pp); err == nil {
			p.Meta[MetaPrintingPrices] = string(data)
		}
	}
}

func (n *Normalizer) technologyNames(markings []resolver.Marking) []string {
	names := make([]string, 0, len(markings))
	for _, m := range markings {
		if m.Technology != "" {
			names = append(names, n.tables.TechnologyName(m.Technology))
		}
	}
	return dedupe(names)
}

func (n *Normalizer) baseMeta(sku string) map[string]string {
	meta := map[string]string{MetaSupplierSKU: sku}
	if n.opts.Supplier != "" {
		meta[MetaSupplier] = n.opts.Supplier
	}
	return meta
}

func (n *Normalizer) material(rec types.Record, name string) (string, bool) {
	if m := rec.String(n.fields.Material...); m != "" {
		return m, true
	}
	return n.tables.Material(name)
}

func (n *Normalizer) dimensions(rec types.Record) (string, bool) {
	w := trimUnit(rec.String(n.fields.Width...))
	h := trimUnit(rec.String(n.fields.Height...))
	d := trimUnit(rec.String(n.fields.Depth...))
	if w == "" || h == "" || d == "" {
		return "", false
	}
	return w + " × " + h + " × " + d + " cm", true
}

func (n *Normalizer) weight(rec types.Record) string {
	w := rec.String(n.fields.Weight...)
	if w == "" || hasLetter(w) {
		return w
	}
	return w + " kg"
}

func stockStatus(qty int) types.StockStatus {
	if qty > 0 {
		return types.StockInStock
	}
	return types.StockOutOfStock
}

func trimUnit(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "cm")
	return strings.TrimSpace(v)
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
