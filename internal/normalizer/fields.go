package normalizer

// Fields lists the record field names tried, in order, for each canonical
// attribute. Empty lists fall back to DefaultFields.
type Fields struct {
	Name           []string `json:"name,omitempty"`
	DesignName     []string `json:"designName,omitempty"`
	Description    []string `json:"description,omitempty"`
	Width          []string `json:"width,omitempty"`
	Height         []string `json:"height,omitempty"`
	Depth          []string `json:"depth,omitempty"`
	Dimensions     []string `json:"dimensions,omitempty"`
	Weight         []string `json:"weight,omitempty"`
	Material       []string `json:"material,omitempty"`
	Color          []string `json:"color,omitempty"`
	Size           []string `json:"size,omitempty"`
	MinOrder       []string `json:"minOrder,omitempty"`
	Packaging      []string `json:"packaging,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
	Country        []string `json:"country,omitempty"`
	Brand          []string `json:"brand,omitempty"`
	Images         []string `json:"images,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	CategoryIDs    []string `json:"categoryIds,omitempty"`
	Price          []string `json:"price,omitempty"`
	Stock          []string `json:"stock,omitempty"`
}

// DefaultFields returns the field names shared by most suppliers
func DefaultFields() Fields {
	return Fields{
		Name:           []string{"name", "title", "productName", "nazwa"},
		DesignName:     []string{"designName", "design_name", "model"},
		Description:    []string{"description", "descriptionLong", "desc", "opis"},
		Width:          []string{"width", "dimensions.width", "size_x"},
		Height:         []string{"height", "dimensions.height", "size_y"},
		Depth:          []string{"depth", "length", "dimensions.depth", "size_z"},
		Dimensions:     []string{"dimensions", "size_text", "wymiary"},
		Weight:         []string{"weight", "individualProductWeightGram", "weight_kg", "waga"},
		Material:       []string{"material", "materials.material", "materiał"},
		Color:          []string{"colors.color", "color", "colour", "color_name", "kolor"},
		Size:           []string{"size", "rozmiar"},
		MinOrder:       []string{"minOrderQuantity", "min_order_quantity", "moq", "minimum_order"},
		Packaging:      []string{"packaging", "packing", "package", "opakowanie"},
		Certifications: []string{"certificates.certificate", "certifications.certification", "certificates", "certifications"},
		Country:        []string{"countryOfOrigin", "country_of_origin", "origin_country", "country"},
		Brand:          []string{"brand", "manufacturer", "producer", "marka"},
		Images:         []string{"images.image", "images", "photos.photo", "photos", "image", "main_image", "image_url"},
		Categories:     []string{"categories.category", "categories", "category_path", "categoryPath"},
		CategoryIDs:    []string{"category_id", "categoryId", "categories.id", "category_ids.id", "@_category"},
		Price:          []string{"price", "regular_price", "listPrice", "price_netto"},
		Stock:          []string{"stock_quantity", "stock", "quantity", "qty"},
	}
}

func (f Fields) merge(d Fields) Fields {
	pick := func(a, b []string) []string {
		if len(a) > 0 {
			return a
		}
		return b
	}
	return Fields{
		Name:           pick(f.Name, d.Name),
		DesignName:     pick(f.DesignName, d.DesignName),
		Description:    pick(f.Description, d.Description),
		Width:          pick(f.Width, d.Width),
		Height:         pick(f.Height, d.Height),
		Depth:          pick(f.Depth, d.Depth),
		Dimensions:     pick(f.Dimensions, d.Dimensions),
		Weight:         pick(f.Weight, d.Weight),
		Material:       pick(f.Material, d.Material),
		Color:          pick(f.Color, d.Color),
		Size:           pick(f.Size, d.Size),
		MinOrder:       pick(f.MinOrder, d.MinOrder),
		Packaging:      pick(f.Packaging, d.Packaging),
		Certifications: pick(f.Certifications, d.Certifications),
		Country:        pick(f.Country, d.Country),
		Brand:          pick(f.Brand, d.Brand),
		Images:         pick(f.Images, d.Images),
		Categories:     pick(f.Categories, d.Categories),
		CategoryIDs:    pick(f.CategoryIDs, d.CategoryIDs),
		Price:          pick(f.Price, d.Price),
		Stock:          pick(f.Stock, d.Stock),
	}
}
