package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storefront-service/pkg/money"
)

// Conf is the Postgres order store.
type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// CreateOrder persists the order, its items, and the reservation handle in a
// single transaction.
func (c *Conf) CreateOrder(ctx context.Context, o Order) (Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var (
			guestName, guestEmail, guestPhone, guestAddress sql.NullString
			customerID                                      sql.NullInt64
		)
		if o.Payer.CustomerID != nil {
			customerID = sql.NullInt64{Int64: *o.Payer.CustomerID, Valid: true}
		}
		if o.Payer.Guest != nil {
			guestName = sql.NullString{String: o.Payer.Guest.Name, Valid: true}
			guestEmail = sql.NullString{String: o.Payer.Guest.Email, Valid: true}
			guestPhone = sql.NullString{String: o.Payer.Guest.Phone, Valid: true}
			guestAddress = sql.NullString{String: o.Payer.Guest.Address, Valid: true}
		}

		queryOrder := `
			INSERT INTO orders (order_id, customer_id, guest_name, guest_email, guest_phone, guest_address,
			                    total_cents, status, reservation_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			RETURNING created_at
		`
		err := tx.QueryRowContext(ctx, queryOrder,
			o.ID, customerID, guestName, guestEmail, guestPhone, guestAddress,
			o.TotalAmount.MinorUnits(), o.Status, o.ReservationID,
		).Scan(&o.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		queryItem := `
			INSERT INTO order_items (order_id, product_id, product_name, variation_id,
			                         variation_name, variation_value, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING order_item_id
		`
		for i := range o.Items {
			item := &o.Items[i]
			item.OrderID = o.ID

			var variationID sql.NullInt64
			if item.VariationID != nil {
				variationID = sql.NullInt64{Int64: *item.VariationID, Valid: true}
			}
			err := tx.QueryRowContext(ctx, queryItem,
				o.ID, item.ProductID, item.ProductName, variationID,
				nullIfEmpty(item.VariationName), nullIfEmpty(item.VariationValue),
				item.Quantity, item.UnitPrice.MinorUnits(),
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// GetOrder loads an order with its items in line order.
func (c *Conf) GetOrder(ctx context.Context, orderID string) (Order, error) {
	var (
		o                                               Order
		customerID                                      sql.NullInt64
		guestName, guestEmail, guestPhone, guestAddress sql.NullString
		totalCents                                      int64
	)
	queryOrder := `
		SELECT order_id, customer_id, guest_name, guest_email, guest_phone, guest_address,
		       total_cents, status, reservation_id, created_at
		FROM orders
		WHERE order_id = $1
	`
	err := c.db.QueryRowContext(ctx, queryOrder, orderID).Scan(
		&o.ID, &customerID, &guestName, &guestEmail, &guestPhone, &guestAddress,
		&totalCents, &o.Status, &o.ReservationID, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("failed to query order %s: %w", orderID, err)
	}
	o.TotalAmount = money.FromMinorUnits(totalCents)
	if customerID.Valid {
		o.Payer.CustomerID = &customerID.Int64
	} else {
		o.Payer.Guest = &GuestProfile{
			Name:    guestName.String,
			Email:   guestEmail.String,
			Phone:   guestPhone.String,
			Address: guestAddress.String,
		}
	}

	queryItems := `
		SELECT order_item_id, order_id, product_id, product_name, variation_id,
		       COALESCE(variation_name, ''), COALESCE(variation_value, ''), quantity, price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id
	`
	rows, err := c.db.QueryContext(ctx, queryItems, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item        OrderItem
			variationID sql.NullInt64
			priceCents  int64
		)
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&variationID, &item.VariationName, &item.VariationValue, &item.Quantity, &priceCents)
		if err != nil {
			return Order{}, fmt.Errorf("failed to scan order item: %w", err)
		}
		if variationID.Valid {
			item.VariationID = &variationID.Int64
		}
		item.UnitPrice = money.FromMinorUnits(priceCents)
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("error iterating order items: %w", err)
	}
	return o, nil
}

// UpdateStatus changes an order's status only when its current status still
// matches the expected one. It reports whether the update applied.
func (c *Conf) UpdateStatus(ctx context.Context, orderID string, from, to Status) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE order_id = $1 AND status = $2
	`
	result, err := c.db.ExecContext(ctx, query, orderID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListOrders returns a page of summaries filtered by status and customer.
func (c *Conf) ListOrders(ctx context.Context, filter ListFilter) ([]Summary, int, error) {
	var (
		conditions []string
		params     []any
	)
	if filter.Status != nil {
		params = append(params, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(params)))
	}
	if filter.CustomerID != nil {
		params = append(params, *filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", len(params)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders o` + whereClause
	if err := c.db.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	params = append(params, filter.Limit)
	limitPos := len(params)
	params = append(params, filter.Offset)
	offsetPos := len(params)

	query := fmt.Sprintf(`
		SELECT o.order_id, o.customer_id, o.guest_name, o.guest_email,
		       o.total_cents, o.status, o.created_at,
		       COUNT(oi.order_item_id) AS items_count
		FROM orders o
		LEFT JOIN order_items oi ON o.order_id = oi.order_id
		%s
		GROUP BY o.order_id
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, limitPos, offsetPos)

	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			s                     Summary
			customerID            sql.NullInt64
			guestName, guestEmail sql.NullString
			totalCents            int64
		)
		err := rows.Scan(&s.ID, &customerID, &guestName, &guestEmail, &totalCents, &s.Status, &s.CreatedAt, &s.ItemsCount)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order summary: %w", err)
		}
		if customerID.Valid {
			s.CustomerID = &customerID.Int64
		}
		s.GuestName = guestName.String
		s.GuestEmail = guestEmail.String
		s.TotalAmount = money.FromMinorUnits(totalCents)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating order summaries: %w", err)
	}
	return summaries, total, nil
}

// DeleteOrder removes the order row; order_items cascade with it.
func (c *Conf) DeleteOrder(ctx context.Context, orderID string) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", orderID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback tx: %w", er)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
