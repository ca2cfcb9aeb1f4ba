package suppliers

import (
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/categories"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/feed"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/normalizer"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/charset"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/resolver"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// SupplierID represents unique identifier for each wholesale supplier
type SupplierID string

const (
	SupplierAnda    SupplierID = "anda"
	SupplierAxpol   SupplierID = "axpol"
	SupplierMalfini SupplierID = "malfini"
	SupplierPar     SupplierID = "par"
	SupplierMacma   SupplierID = "macma"
)

// SupplierIDs contains all built-in supplier IDs
var SupplierIDs = []SupplierID{
	SupplierAnda,
	SupplierAxpol,
	SupplierMalfini,
	SupplierPar,
	SupplierMacma,
}

// CategoryShape tells how a category feed encodes its hierarchy
type CategoryShape string

const (
	// CategoriesNested feeds hold children inside their parent element
	CategoriesNested CategoryShape = "nested"
	// CategoriesFlat feeds list every category with a parent id
	CategoriesFlat CategoryShape = "flat"
)

// Profile describes where a supplier's feeds live and how their fields are named
type Profile struct {
	ID   SupplierID `json:"id"`
	Name string     `json:"name"`
	// Dir is the supplier directory below the input directory
	Dir   string      `json:"dir"`
	Feeds []feed.Spec `json:"feeds"`
	// PrintingPrices is the printing price table file, relative to Dir
	PrintingPrices string            `json:"printingPrices,omitempty"`
	CategoryShape  CategoryShape     `json:"categoryShape,omitempty"`
	CategoryFields categories.Fields `json:"-"`
	Resolver       resolver.Fields   `json:"-"`
	Normalizer     normalizer.Fields `json:"-"`
	// OutputFile is the output file name below the output directory
	OutputFile string `json:"outputFile"`
}

// Feed returns the feed spec of the given kind
func (p Profile) Feed(kind types.FeedKind) (feed.Spec, bool) {
	for _, f := range p.Feeds {
		if f.Kind == kind {
			return f, true
		}
	}
	return feed.Spec{}, false
}

// Profiles contains all built-in supplier profiles
var Profiles = map[SupplierID]Profile{
	SupplierAnda: {
		ID:   SupplierAnda,
		Name: "ANDA Present",
		Dir:  "anda",
		Feeds: []feed.Spec{
			{Kind: types.FeedProducts, Path: "products.xml", Element: "product", KeyFields: []string{"itemNumber", "@_itemNumber"}, Mode: types.CollectSingle, Required: true},
			{Kind: types.FeedPrices, Path: "prices.xml", Element: "price", KeyFields: []string{"itemNumber"}, Mode: types.CollectMulti},
			{Kind: types.FeedStock, Path: "inventories.xml", Element: "record", KeyFields: []string{"itemNumber"}, Mode: types.CollectMulti},
			{Kind: types.FeedCategories, Path: "categories.xml", Element: "category", KeyFields: []string{"@_id", "id"}, Mode: types.CollectSingle},
			{Kind: types.FeedLabeling, Path: "labeling.xml", Element: "labeling", KeyFields: []string{"itemNumber"}, Mode: types.CollectMulti},
		},
		PrintingPrices: "printing_prices.json",
		CategoryShape:  CategoriesNested,
		CategoryFields: categories.DefaultFields(),
		Normalizer: normalizer.Fields{
			CategoryIDs: []string{"categories.category.@_id", "categoryId", "category_id"},
			Images:      []string{"primaryImage", "secondaryImages.image", "images.image"},
		},
		OutputFile: "anda.xml",
	},
	SupplierAxpol: {
		ID:   SupplierAxpol,
		Name: "Axpol Trading",
		Dir:  "axpol",
		Feeds: []feed.Spec{
			{Kind: types.FeedProducts, Path: "products.xml", Element: "Row", KeyFields: []string{"CodeERP", "ProductId"}, Mode: types.CollectSingle, Required: true, Encoding: charset.EncodingAuto},
			{Kind: types.FeedStock, Path: "stocks.xml", Element: "Row", KeyFields: []string{"Kod", "CodeERP"}, Mode: types.CollectMulti},
			{Kind: types.FeedLabeling, Path: "print.xml", Element: "Row", KeyFields: []string{"CodeERP"}, Mode: types.CollectMulti},
		},
		CategoryFields: categories.DefaultFields(),
		Resolver: resolver.Fields{
			Item:              []string{"CodeERP", "Kod"},
			StockAmount:       []string{"InStock", "Quantity", "amount"},
			Markings:          []string{"Positions.Position"},
			MarkingTechnology: []string{"Technique", "technology"},
			MarkingPosition:   []string{"Place", "position"},
			MarkingArea:       []string{"MaxSize", "maxPrintArea"},
			MarkingColors:     []string{"MaxColors", "maxColors"},
		},
		Normalizer: normalizer.Fields{
			Name:        []string{"TitlePL", "TitleEN", "name"},
			Description: []string{"DescriptionPL", "description"},
			Material:    []string{"MaterialPL", "material"},
			Color:       []string{"ColorPL", "color"},
			Dimensions:  []string{"Dimensions", "dimensions"},
			Weight:      []string{"ItemWeightG", "weight"},
			Categories:  []string{"MainCategoryPL", "categories"},
			Country:     []string{"CountryOfOrigin", "countryOfOrigin"},
			Images:      []string{"Foto01", "Foto02", "Foto03", "Foto04", "images.image"},
			Price:       []string{"NetPricePLN", "price"},
			MinOrder:    []string{"MinQuantity", "minOrderQuantity"},
		},
		OutputFile: "axpol.xml",
	},
	SupplierMalfini: {
		ID:   SupplierMalfini,
		Name: "Malfini",
		Dir:  "malfini",
		Feeds: []feed.Spec{
			{Kind: types.FeedProducts, Path: "products.json", KeyFields: []string{"code"}, Mode: types.CollectSingle, Required: true},
			{Kind: types.FeedPrices, Path: "prices.json", KeyFields: []string{"productSizeCode", "code"}, Mode: types.CollectMulti},
			{Kind: types.FeedStock, Path: "availabilities.json", KeyFields: []string{"productSizeCode", "code"}, Mode: types.CollectMulti},
		},
		CategoryFields: categories.DefaultFields(),
		Resolver: resolver.Fields{
			Item:         []string{"productSizeCode", "code"},
			PriceAmount:  []string{"price", "amount"},
			RegularPrice: []string{"price", "amount"},
			Currency:     []string{"currency"},
			StockAmount:  []string{"quantity", "amount"},
		},
		Normalizer: normalizer.Fields{
			Name:           []string{"name"},
			Description:    []string{"description", "subtitle"},
			Categories:     []string{"categoryName", "category"},
			Images:         []string{"images.link", "images"},
			Certifications: []string{"certificates.name", "certificates"},
		},
		OutputFile: "malfini.xml",
	},
	SupplierPar: {
		ID:   SupplierPar,
		Name: "PAR",
		Dir:  "par",
		Feeds: []feed.Spec{
			{Kind: types.FeedProducts, Path: "produkty.xml", Element: "produkt", KeyFields: []string{"kod", "@_kod"}, Mode: types.CollectSingle, Required: true},
			{Kind: types.FeedPrices, Path: "cennik.xlsx", KeyFields: []string{"kod"}, Mode: types.CollectMulti, HeaderRows: 1},
			{Kind: types.FeedStock, Path: "stany.xml", Element: "produkt", KeyFields: []string{"kod", "@_kod"}, Mode: types.CollectMulti},
			{Kind: types.FeedCategories, Path: "kategorie.xml", Element: "kategoria", KeyFields: []string{"id", "@_id"}, Mode: types.CollectSingle},
		},
		CategoryShape: CategoriesFlat,
		CategoryFields: categories.Fields{
			ID:     []string{"id", "@_id"},
			Name:   []string{"nazwa", "name"},
			Parent: []string{"rodzic", "parent_id", "@_rodzic"},
		},
		Resolver: resolver.Fields{
			Item:         []string{"kod"},
			RegularPrice: []string{"cena", "cena_netto"},
			SalePrice:    []string{"cena_promocyjna"},
			Currency:     []string{"waluta"},
			StockAmount:  []string{"stan", "ilosc", "#text"},
			StockType:    []string{"typ", "@_typ"},
		},
		Normalizer: normalizer.Fields{
			Name:        []string{"nazwa"},
			Description: []string{"opis"},
			CategoryIDs: []string{"kategorie.kategoria.@_id", "kategorie.kategoria", "kategoria"},
			Images:      []string{"zdjecia.zdjecie", "zdjecie"},
			Material:    []string{"material"},
			Weight:      []string{"waga"},
			Color:       []string{"kolor"},
			Width:       []string{"szerokosc"},
			Height:      []string{"wysokosc"},
			Depth:       []string{"glebokosc"},
		},
		OutputFile: "par.xml",
	},
	SupplierMacma: {
		ID:   SupplierMacma,
		Name: "Macma",
		Dir:  "macma",
		Feeds: []feed.Spec{
			{Kind: types.FeedProducts, Path: "offer.xml", Element: "product", KeyFields: []string{"code", "@_code", "code_full"}, Mode: types.CollectSingle, Required: true},
			{Kind: types.FeedPrices, Path: "prices.xml", Element: "product", KeyFields: []string{"code", "@_code"}, Mode: types.CollectMulti},
			{Kind: types.FeedStock, Path: "stocks.csv", KeyFields: []string{"code", "Kod"}, Mode: types.CollectMulti},
			{Kind: types.FeedCategories, Path: "categories.xml", Element: "category", KeyFields: []string{"@_id", "id"}, Mode: types.CollectSingle},
			{Kind: types.FeedLabeling, Path: "markgroups.xml", Element: "product", KeyFields: []string{"code", "@_code"}, Mode: types.CollectMulti},
		},
		PrintingPrices: "printing_prices.json",
		CategoryShape:  CategoriesNested,
		CategoryFields: categories.Fields{
			ID:       []string{"@_id", "id"},
			Name:     []string{"@_name", "name"},
			Children: []string{"subcategories.category", "category"},
		},
		Resolver: resolver.Fields{
			Item:              []string{"code", "@_code"},
			RegularPrice:      []string{"price", "net_price"},
			StockAmount:       []string{"quantity_24h", "quantity", "amount"},
			Markings:          []string{"marking_places.place", "marking"},
			MarkingTechnology: []string{"@_technology", "technology"},
			MarkingPosition:   []string{"@_name", "name"},
			MarkingArea:       []string{"@_max_size", "size"},
			MarkingColors:     []string{"@_max_colors", "colors"},
		},
		Normalizer: normalizer.Fields{
			CategoryIDs: []string{"categories.category.@_id", "categories.category"},
			Images:      []string{"images.image.@_src", "images.image"},
		},
		OutputFile: "macma.xml",
	},
}

// IsValidSupplierID checks if a supplier ID is built in
func IsValidSupplierID(id string) bool {
	_, ok := Profiles[SupplierID(id)]
	return ok
}
