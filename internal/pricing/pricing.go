// Package pricing computes the authoritative unit price for an order line.
// Client-submitted prices are never trusted; whatever the caller sent, the
// persisted price is the one computed here.
package pricing

import (
	"storefront-service/internal/catalog"
	"storefront-service/pkg/money"
)

// UnitPrice returns the product's base price plus the variation's additional
// price when a variation is supplied.
func UnitPrice(product catalog.Product, variation *catalog.Variation) money.Amount {
	price := product.BasePrice
	if variation != nil {
		price = price.Add(variation.AdditionalPrice)
	}
	return price
}

// LineTotal returns the exact line total for a unit price and quantity.
func LineTotal(unitPrice money.Amount, quantity int) money.Amount {
	return unitPrice.Mul(quantity)
}
