package inventory

import (
	"errors"
	"fmt"
	"time"
)

// TargetKind says which stock counter a ledger line addresses.
type TargetKind string

const (
	TargetProduct   TargetKind = "product"
	TargetVariation TargetKind = "variation"
)

// Target is a stock-bearing entity: a variation when the order line has one,
// otherwise the product itself.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   int64      `json:"id"`
}

func ProductTarget(productID int64) Target {
	return Target{Kind: TargetProduct, ID: productID}
}

func VariationTarget(variationID int64) Target {
	return Target{Kind: TargetVariation, ID: variationID}
}

func (t Target) String() string {
	return fmt.Sprintf("%s/%d", t.Kind, t.ID)
}

// Line is one (target, quantity) pair of a reservation request.
type Line struct {
	Target   Target `json:"target"`
	Quantity int    `json:"quantity"`
}

// Reservation records the stock amounts decremented for one order. It drives
// the later equal-and-opposite release on cancellation or rollback.
type Reservation struct {
	ID        string    `json:"reservation_id"`
	Lines     []Line    `json:"lines"`
	Released  bool      `json:"released"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrAlreadyReleased rejects a second release of the same reservation so
	// stock is never double-credited.
	ErrAlreadyReleased = errors.New("inventory: reservation already released")

	// ErrReservationNotFound is returned when the reservation id is unknown.
	ErrReservationNotFound = errors.New("inventory: reservation not found")
)

// InsufficientStockError names the first target in request-line order whose
// stock could not cover the requested quantity.
type InsufficientStockError struct {
	Target    Target
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Target, e.Requested, e.Available)
}
