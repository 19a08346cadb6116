// Package inventory is the stock-accounting component. It is the only code
// allowed to mutate stock counters; everything else goes through Reserve and
// Release.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Ledger is the Postgres-backed ledger. A Reserve call is one transaction:
// either every line's check-and-decrement commits, or none of them do.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Ledger{db: db}, nil
}

// Reserve atomically checks and decrements stock for every line. The failing
// target reported for a given input is always the earliest failing line in
// request order. On any failure the transaction rolls back and no stock is
// consumed.
func (l *Ledger) Reserve(ctx context.Context, lines []Line) (Reservation, error) {
	if len(lines) == 0 {
		return Reservation{}, fmt.Errorf("reserve called with no lines")
	}

	var res Reservation
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		reservationID := uuid.NewString()

		queryInsert := `
			INSERT INTO reservations (reservation_id, released, created_at)
			VALUES ($1, FALSE, NOW())
			RETURNING created_at
		`
		if err := tx.QueryRowContext(ctx, queryInsert, reservationID).Scan(&res.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		// Decrementing in a global (kind, id) order keeps two concurrent
		// batches over the same targets from taking row locks in opposite
		// order and deadlocking each other.
		failedLine := -1
		var failure *InsufficientStockError
		for _, i := range lockOrder(lines) {
			err := l.decrement(ctx, tx, lines[i])
			if err == nil {
				continue
			}
			var stockErr *InsufficientStockError
			if !errors.As(err, &stockErr) {
				return err
			}
			if failedLine == -1 || i < failedLine {
				failedLine = i
				failure = stockErr
			}
		}
		if failure != nil {
			return failure
		}

		queryLine := `
			INSERT INTO reservation_lines (reservation_id, target_kind, target_id, quantity)
			VALUES ($1, $2, $3, $4)
		`
		for _, line := range lines {
			if _, err := tx.ExecContext(ctx, queryLine, reservationID, line.Target.Kind, line.Target.ID, line.Quantity); err != nil {
				return fmt.Errorf("failed to insert reservation line: %w", err)
			}
		}

		res.ID = reservationID
		res.Lines = lines
		return nil
	})
	if err != nil {
		return Reservation{}, err
	}
	return res, nil
}

// Release credits back the amounts of a prior reservation. Releasing the same
// reservation twice fails with ErrAlreadyReleased and changes nothing.
func (l *Ledger) Release(ctx context.Context, reservationID string) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		queryMark := `
			UPDATE reservations
			SET released = TRUE, released_at = NOW()
			WHERE reservation_id = $1 AND released = FALSE
		`
		result, err := tx.ExecContext(ctx, queryMark, reservationID)
		if err != nil {
			return fmt.Errorf("failed to mark reservation released: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			var released bool
			err := tx.QueryRowContext(ctx,
				`SELECT released FROM reservations WHERE reservation_id = $1`, reservationID,
			).Scan(&released)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to query reservation %s: %w", reservationID, err)
			}
			return ErrAlreadyReleased
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT target_kind, target_id, quantity FROM reservation_lines WHERE reservation_id = $1`,
			reservationID,
		)
		if err != nil {
			return fmt.Errorf("failed to query reservation lines: %w", err)
		}
		defer rows.Close()

		var lines []Line
		for rows.Next() {
			var line Line
			if err := rows.Scan(&line.Target.Kind, &line.Target.ID, &line.Quantity); err != nil {
				return fmt.Errorf("failed to scan reservation line: %w", err)
			}
			lines = append(lines, line)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating reservation lines: %w", err)
		}

		for _, line := range lines {
			if err := l.increment(ctx, tx, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// lockOrder returns the line indexes sorted by (kind, id). The sort is stable
// so duplicate targets keep their relative request order.
func lockOrder(lines []Line) []int {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := lines[order[a]].Target, lines[order[b]].Target
		if ta.Kind != tb.Kind {
			return ta.Kind < tb.Kind
		}
		return ta.ID < tb.ID
	})
	return order
}

// decrement applies one conditional check-and-decrement. A zero row count
// means the stock check failed.
func (l *Ledger) decrement(ctx context.Context, tx *sql.Tx, line Line) error {
	table, idColumn := stockTable(line.Target.Kind)
	query := fmt.Sprintf(
		`UPDATE %s SET stock = stock - $1 WHERE %s = $2 AND stock >= $1`,
		table, idColumn,
	)
	result, err := tx.ExecContext(ctx, query, line.Quantity, line.Target.ID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for %s: %w", line.Target, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		available := 0
		queryStock := fmt.Sprintf(`SELECT stock FROM %s WHERE %s = $1`, table, idColumn)
		if err := tx.QueryRowContext(ctx, queryStock, line.Target.ID).Scan(&available); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to query stock for %s: %w", line.Target, err)
		}
		return &InsufficientStockError{Target: line.Target, Requested: line.Quantity, Available: available}
	}
	return nil
}

func (l *Ledger) increment(ctx context.Context, tx *sql.Tx, line Line) error {
	table, idColumn := stockTable(line.Target.Kind)
	query := fmt.Sprintf(`UPDATE %s SET stock = stock + $1 WHERE %s = $2`, table, idColumn)
	if _, err := tx.ExecContext(ctx, query, line.Quantity, line.Target.ID); err != nil {
		return fmt.Errorf("failed to restore stock for %s: %w", line.Target, err)
	}
	return nil
}

func stockTable(kind TargetKind) (table, idColumn string) {
	if kind == TargetVariation {
		return "variations", "variation_id"
	}
	return "products", "product_id"
}

func (l *Ledger) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
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
