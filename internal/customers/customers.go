// Package customers resolves registered-customer ids for payer validation.
// The order path only needs existence; it never reads customer PII.
package customers

import (
	"context"
	"database/sql"
	"fmt"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// Exists reports whether a registered customer with the given id exists.
func (c *Conf) Exists(ctx context.Context, customerID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE customer_id = $1)`
	if err := c.db.QueryRowContext(ctx, query, customerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query customer %d: %w", customerID, err)
	}
	return exists, nil
}
