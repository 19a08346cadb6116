// Package catalog is the read-only lookup path for products and variations.
// Nothing in this package mutates stock; that is the inventory ledger's job.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/pkg/money"
)

// ErrNotFound is returned when a product or variation id does not exist.
var ErrNotFound = errors.New("catalog: not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// Lookup fetches a product and its variations by id.
func (c *Conf) Lookup(ctx context.Context, productID int64) (Product, error) {
	var (
		p          Product
		priceCents int64
	)
	query := `
		SELECT product_id, category_id, name, COALESCE(description, ''), price_cents, stock, created_at
		FROM products
		WHERE product_id = $1
	`
	err := c.db.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Description, &priceCents, &p.Stock, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to query product %d: %w", productID, err)
	}
	p.BasePrice = money.FromMinorUnits(priceCents)

	variations, err := c.variationsOf(ctx, productID)
	if err != nil {
		return Product{}, err
	}
	p.Variations = variations
	return p, nil
}

// LookupVariation fetches a single variation by id.
func (c *Conf) LookupVariation(ctx context.Context, variationID int64) (Variation, error) {
	var (
		v          Variation
		priceCents int64
	)
	query := `
		SELECT variation_id, product_id, attribute_name, attribute_value, additional_price_cents, stock
		FROM variations
		WHERE variation_id = $1
	`
	err := c.db.QueryRowContext(ctx, query, variationID).Scan(
		&v.ID, &v.ProductID, &v.AttributeName, &v.AttributeValue, &priceCents, &v.Stock,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Variation{}, ErrNotFound
		}
		return Variation{}, fmt.Errorf("failed to query variation %d: %w", variationID, err)
	}
	v.AdditionalPrice = money.FromMinorUnits(priceCents)
	return v, nil
}

// ListProducts returns a page of products without their variations, plus the
// total count for pagination.
func (c *Conf) ListProducts(ctx context.Context, limit, offset int) ([]Product, int, error) {
	var total int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `
		SELECT product_id, category_id, name, COALESCE(description, ''), price_cents, stock, created_at
		FROM products
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := c.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var (
			p          Product
			priceCents int64
		)
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &priceCents, &p.Stock, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		p.BasePrice = money.FromMinorUnits(priceCents)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}
	return products, total, nil
}

func (c *Conf) variationsOf(ctx context.Context, productID int64) ([]Variation, error) {
	query := `
		SELECT variation_id, product_id, attribute_name, attribute_value, additional_price_cents, stock
		FROM variations
		WHERE product_id = $1
		ORDER BY variation_id
	`
	rows, err := c.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variations of product %d: %w", productID, err)
	}
	defer rows.Close()

	var variations []Variation
	for rows.Next() {
		var (
			v          Variation
			priceCents int64
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.AttributeName, &v.AttributeValue, &priceCents, &v.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan variation: %w", err)
		}
		v.AdditionalPrice = money.FromMinorUnits(priceCents)
		variations = append(variations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variations: %w", err)
	}
	return variations, nil
}
