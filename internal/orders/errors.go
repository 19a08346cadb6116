package orders

import (
	"errors"
	"fmt"
)

// Stable error kinds surfaced to callers. Validation failures carry the
// offending field or target so a client can tell "fix the request" apart
// from "retry with different items".
var (
	ErrInvalidPayer      = errors.New("orders: payer must be either a registered customer or a complete guest profile")
	ErrEmptyOrder        = errors.New("orders: order must contain at least one item")
	ErrIllegalTransition = errors.New("orders: illegal status transition")
	ErrNotFound          = errors.New("orders: order not found")
	ErrPersistence       = errors.New("orders: persistence failure")
)

// InvalidLineItemError marks a malformed request line before any catalog or
// stock access happens.
type InvalidLineItemError struct {
	Line   int
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %d: %s", e.Line, e.Reason)
}

// UnknownProductError reports a product id the catalog does not know.
type UnknownProductError struct {
	ProductID int64
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %d", e.ProductID)
}

// UnknownVariationError reports a variation id the catalog does not know.
type UnknownVariationError struct {
	VariationID int64
}

func (e *UnknownVariationError) Error() string {
	return fmt.Sprintf("unknown variation %d", e.VariationID)
}

// IllegalTransitionError wraps ErrIllegalTransition with the attempted change.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}
