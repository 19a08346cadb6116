// Package orders assembles checkout requests into persisted orders and
// governs their status lifecycle afterwards.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront-service/internal/catalog"
	"storefront-service/internal/inventory"
	"storefront-service/internal/pricing"
	"storefront-service/pkg/logkey"
	"storefront-service/pkg/money"
)

// CatalogReader is the read-only catalog surface the assembler needs.
type CatalogReader interface {
	Lookup(ctx context.Context, productID int64) (catalog.Product, error)
	LookupVariation(ctx context.Context, variationID int64) (catalog.Variation, error)
}

// CustomerStore resolves registered-customer ids to existence.
type CustomerStore interface {
	Exists(ctx context.Context, customerID int64) (bool, error)
}

// Ledger is the stock-accounting contract. Only ledger implementations may
// mutate stock counters.
type Ledger interface {
	Reserve(ctx context.Context, lines []inventory.Line) (inventory.Reservation, error)
	Release(ctx context.Context, reservationID string) error
}

// ListFilter narrows an order listing.
type ListFilter struct {
	Status     *Status
	CustomerID *int64
	Limit      int
	Offset     int
}

// Store is the durable order storage. CreateOrder must write the order, its
// items, and the reservation handle as one atomic unit.
type Store interface {
	CreateOrder(ctx context.Context, o Order) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to Status) (bool, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]Summary, int, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// Service wires the catalog reader, pricing engine, inventory ledger, and
// order store into the checkout and lifecycle operations.
type Service struct {
	catalog   CatalogReader
	customers CustomerStore
	ledger    Ledger
	store     Store
}

func NewService(catalogReader CatalogReader, customerStore CustomerStore, ledger Ledger, store Store) (*Service, error) {
	if catalogReader == nil || customerStore == nil || ledger == nil || store == nil {
		return nil, fmt.Errorf("orders service is missing a dependency")
	}
	return &Service{
		catalog:   catalogReader,
		customers: customerStore,
		ledger:    ledger,
		store:     store,
	}, nil
}

// pricedLine is one resolved and priced checkout line.
type pricedLine struct {
	item   OrderItem
	ledger inventory.Line
}

// PlaceOrder validates a checkout request, prices it, reserves stock, and
// persists the order with its items as one all-or-nothing unit. On a
// persistence failure after a successful reservation the reservation is
// released before the error is surfaced, so stock is never lost to a failed
// write.
func (s *Service) PlaceOrder(ctx context.Context, payer Payer, requested []RequestedItem) (Order, error) {
	if len(requested) == 0 {
		return Order{}, ErrEmptyOrder
	}
	for i, item := range requested {
		if item.Quantity < 1 {
			return Order{}, &InvalidLineItemError{Line: i, Reason: fmt.Sprintf("quantity must be at least 1, got %d", item.Quantity)}
		}
	}

	if err := s.validatePayer(ctx, payer); err != nil {
		return Order{}, err
	}

	lines, total, err := s.resolveAndPrice(ctx, requested)
	if err != nil {
		return Order{}, err
	}

	ledgerLines := make([]inventory.Line, 0, len(lines))
	for _, line := range lines {
		ledgerLines = append(ledgerLines, line.ledger)
	}

	reservation, err := s.ledger.Reserve(ctx, ledgerLines)
	if err != nil {
		return Order{}, err
	}

	order := Order{
		Payer:         payer,
		TotalAmount:   total,
		Status:        StatusPending,
		ReservationID: reservation.ID,
	}
	for _, line := range lines {
		order.Items = append(order.Items, line.item)
	}

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		// Compensating action: give the reserved stock back before failing.
		if releaseErr := s.ledger.Release(ctx, reservation.ID); releaseErr != nil {
			slog.Error("failed to release reservation after persistence failure",
				slog.String(logkey.ReservationID, reservation.ID),
				slog.String(logkey.ERROR, releaseErr.Error()))
		}
		return Order{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return created, nil
}

// GetOrder returns the persisted order, items included.
func (s *Service) GetOrder(ctx context.Context, orderID string) (Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// ListOrders returns a page of order summaries plus the total match count.
func (s *Service) ListOrders(ctx context.Context, filter ListFilter) ([]Summary, int, error) {
	return s.store.ListOrders(ctx, filter)
}

// TransitionStatus applies one legal status change. Entering cancelled from a
// non-terminal state releases the order's stock reservation before the
// transition is reported successful. Cancelling an already-cancelled order
// succeeds without changing anything, after making sure the reservation
// really was released.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, next Status) (Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	if next == StatusCancelled && order.Status == StatusCancelled {
		// A prior cancel may have committed the status and then failed to
		// release the reservation. Re-attempting here makes retrying the
		// cancel the recovery path for that partial failure.
		if err := s.releaseReservation(ctx, order); err != nil {
			return Order{}, err
		}
		return order, nil
	}
	if !CanTransition(order.Status, next) {
		return Order{}, &IllegalTransitionError{From: order.Status, To: next}
	}

	updated, err := s.store.UpdateStatus(ctx, orderID, order.Status, next)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !updated {
		// Lost a race with a concurrent transition; re-read and re-judge.
		current, err := s.store.GetOrder(ctx, orderID)
		if err != nil {
			return Order{}, err
		}
		if current.Status == next {
			if next == StatusCancelled {
				if err := s.releaseReservation(ctx, current); err != nil {
					return Order{}, err
				}
			}
			return current, nil
		}
		return Order{}, &IllegalTransitionError{From: current.Status, To: next}
	}

	if next == StatusCancelled {
		if err := s.releaseReservation(ctx, order); err != nil {
			return Order{}, err
		}
	}

	order.Status = next
	return order, nil
}

// releaseReservation credits the order's reserved stock back. A reservation
// that was already released is fine; any other failure is surfaced so the
// caller can retry the cancel.
func (s *Service) releaseReservation(ctx context.Context, order Order) error {
	if order.ReservationID == "" {
		return nil
	}
	if err := s.ledger.Release(ctx, order.ReservationID); err != nil && !errors.Is(err, inventory.ErrAlreadyReleased) {
		return fmt.Errorf("failed to release reservation %s: %w", order.ReservationID, err)
	}
	return nil
}

// DeleteOrder removes an order and, through the store, its items.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	return s.store.DeleteOrder(ctx, orderID)
}

func (s *Service) validatePayer(ctx context.Context, payer Payer) error {
	switch {
	case payer.CustomerID != nil && payer.Guest != nil:
		return fmt.Errorf("%w: both customer id and guest profile supplied", ErrInvalidPayer)
	case payer.CustomerID == nil && payer.Guest == nil:
		return ErrInvalidPayer
	case payer.CustomerID != nil:
		exists, err := s.customers.Exists(ctx, *payer.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to resolve customer %d: %w", *payer.CustomerID, err)
		}
		if !exists {
			return fmt.Errorf("%w: customer %d does not exist", ErrInvalidPayer, *payer.CustomerID)
		}
	default:
		guest := payer.Guest
		if guest.Name == "" || guest.Email == "" || guest.Phone == "" || guest.Address == "" {
			return fmt.Errorf("%w: guest profile is incomplete", ErrInvalidPayer)
		}
	}
	return nil
}

// resolveAndPrice turns request lines into snapshotted order items with
// authoritative prices, and the matching ledger lines. Submitted prices are
// discarded here.
func (s *Service) resolveAndPrice(ctx context.Context, requested []RequestedItem) ([]pricedLine, money.Amount, error) {
	lines := make([]pricedLine, 0, len(requested))
	var total money.Amount

	for i, item := range requested {
		product, err := s.catalog.Lookup(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, 0, &UnknownProductError{ProductID: item.ProductID}
			}
			return nil, 0, fmt.Errorf("failed to look up product %d: %w", item.ProductID, err)
		}

		orderItem := OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
		}
		target := inventory.ProductTarget(product.ID)

		var variation *catalog.Variation
		if item.VariationID != nil {
			v, err := s.catalog.LookupVariation(ctx, *item.VariationID)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return nil, 0, &UnknownVariationError{VariationID: *item.VariationID}
				}
				return nil, 0, fmt.Errorf("failed to look up variation %d: %w", *item.VariationID, err)
			}
			if v.ProductID != item.ProductID {
				return nil, 0, &InvalidLineItemError{
					Line:   i,
					Reason: fmt.Sprintf("variation %d does not belong to product %d", v.ID, item.ProductID),
				}
			}
			variation = &v
			orderItem.VariationID = &v.ID
			orderItem.VariationName = v.AttributeName
			orderItem.VariationValue = v.AttributeValue
			target = inventory.VariationTarget(v.ID)
		}

		orderItem.UnitPrice = pricing.UnitPrice(product, variation)
		total = total.Add(orderItem.LineTotal())

		lines = append(lines, pricedLine{
			item:   orderItem,
			ledger: inventory.Line{Target: target, Quantity: item.Quantity},
		})
	}
	return lines, total, nil
}
