package models

// Category is one of the fixed product categories.
type Category string

const (
	CategoryRings     Category = "Rings"
	CategoryNecklaces Category = "Necklaces"
	CategoryBracelets Category = "Bracelets"
	CategoryEarrings  Category = "Earrings"

	// CategoryAll is the catalog filter value that matches every product.
	CategoryAll Category = "all"
)

// Categories lists the purchasable categories in display order.
var Categories = []Category{CategoryRings, CategoryNecklaces, CategoryBracelets, CategoryEarrings}

// Product is a catalog entry. Only Image is rewritten after load.
type Product struct {
	ID            int      `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Category      Category `json:"category" yaml:"category"`
	Price         float64  `json:"price" yaml:"price"`
	OriginalPrice *float64 `json:"originalPrice" yaml:"originalPrice"`
	Image         string   `json:"image" yaml:"image"`
	Rating        float64  `json:"rating" yaml:"rating"`
	Reviews       int      `json:"reviews" yaml:"reviews"`
	Inventory     int      `json:"inventory" yaml:"inventory"`
}

// OnSale reports whether the product carries a discount badge.
func (p Product) OnSale() bool {
	return p.OriginalPrice != nil
}

// InStock reports whether at least one unit can be bought.
func (p Product) InStock() bool {
	return p.Inventory > 0
}
