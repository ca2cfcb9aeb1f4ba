package types

import "github.com/shopspring/decimal"

// ProductType is the WooCommerce product type of an output unit
type ProductType string

const (
	ProductSimple    ProductType = "simple"
	ProductVariable  ProductType = "variable"
	ProductVariation ProductType = "variation"
)

// StockStatus is the WooCommerce stock status
type StockStatus string

const (
	StockInStock    StockStatus = "instock"
	StockOutOfStock StockStatus = "outofstock"
)

// Attribute is one product attribute in output order
type Attribute struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	IsVariation bool   `json:"isVariation"`
	Visible     bool   `json:"visible"`
}

// NormalizedProduct is the canonical output unit. It is built once during
// normalization and serialized exactly once by the emitter.
type NormalizedProduct struct {
	SKU           string              `json:"sku"`
	Type          ProductType         `json:"type"`
	ParentSKU     string              `json:"parentSku,omitempty"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	CategoryPaths []string            `json:"categoryPaths"`
	Price         decimal.NullDecimal `json:"price"`
	SalePrice     decimal.NullDecimal `json:"salePrice"`
	StockQuantity int                 `json:"stockQuantity"`
	StockStatus   StockStatus         `json:"stockStatus"`
	Attributes    []Attribute         `json:"attributes"`
	Images        []string            `json:"images"`
	Meta          map[string]string   `json:"meta"`
}
