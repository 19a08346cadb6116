package catalog

import (
	"time"

	"storefront-service/pkg/money"
)

// Product is a catalog product as the order path sees it. The product-level
// stock counter is only meaningful when the product has no variations.
type Product struct {
	ID          int64        `json:"product_id"`
	CategoryID  int64        `json:"category_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	BasePrice   money.Amount `json:"price"`
	Stock       int          `json:"stock"`
	CreatedAt   time.Time    `json:"created_at"`
	Variations  []Variation  `json:"variations,omitempty"`
}

// HasVariations reports whether stock is tracked per variation for this product.
func (p Product) HasVariations() bool {
	return len(p.Variations) > 0
}

// Variation is a product variation, e.g. attribute "Size" value "Large".
type Variation struct {
	ID              int64        `json:"variation_id"`
	ProductID       int64        `json:"product_id"`
	AttributeName   string       `json:"attribute_name"`
	AttributeValue  string       `json:"attribute_value"`
	AdditionalPrice money.Amount `json:"additional_price"`
	Stock           int          `json:"stock"`
}
