package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemLedger is an in-memory ledger with the same contract as the Postgres one.
// A single mutex guards the counters, so a batch reserve is serializable with
// respect to every other reserve and release.
type MemLedger struct {
	mu           sync.Mutex
	stock        map[Target]int
	reservations map[string]*Reservation
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		stock:        make(map[Target]int),
		reservations: make(map[string]*Reservation),
	}
}

// SetStock seeds the counter for a target.
func (m *MemLedger) SetStock(target Target, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[target] = quantity
}

// Stock returns the current counter for a target.
func (m *MemLedger) Stock(target Target) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[target]
}

// Reserve checks and decrements every line under one lock. If any line fails
// the whole batch is undone before returning, so a failed reserve consumes
// nothing.
func (m *MemLedger) Reserve(ctx context.Context, lines []Line) (Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	applied := make([]Line, 0, len(lines))
	for _, line := range lines {
		available := m.stock[line.Target]
		if available < line.Quantity {
			for _, undo := range applied {
				m.stock[undo.Target] += undo.Quantity
			}
			return Reservation{}, &InsufficientStockError{
				Target:    line.Target,
				Requested: line.Quantity,
				Available: available,
			}
		}
		m.stock[line.Target] = available - line.Quantity
		applied = append(applied, line)
	}

	res := &Reservation{
		ID:        uuid.NewString(),
		Lines:     append([]Line(nil), lines...),
		CreatedAt: time.Now().UTC(),
	}
	m.reservations[res.ID] = res
	return *res, nil
}

// Release credits back a reservation's amounts exactly once.
func (m *MemLedger) Release(ctx context.Context, reservationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[reservationID]
	if !ok {
		return ErrReservationNotFound
	}
	if res.Released {
		return ErrAlreadyReleased
	}
	for _, line := range res.Lines {
		m.stock[line.Target] += line.Quantity
	}
	res.Released = true
	return nil
}
