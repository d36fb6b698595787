package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// reserveAttempts caps how many candidate units one ReserveOne call will try
// after losing claim races, so heavy contention on the last units of a popular
// product cannot spin forever.
const reserveAttempts = 3

var (
	// ErrExhausted means no available unit could be claimed. It is the
	// expected out-of-stock outcome, not a service failure.
	ErrExhausted = errors.New("no available stock units")

	// ErrInvalidTransition is returned when a rollback or sale targets a
	// unit that is not in the required state.
	ErrInvalidTransition = errors.New("stock unit not in expected state")
)

// ReservationService converts soft demand into hard claims on individual
// stock_units rows. The claim itself is a single conditional UPDATE, so two
// concurrent claimants for the same unit resolve to exactly one winner.
type ReservationService struct {
	pool DBPool
}

func NewReservationService(pool DBPool) *ReservationService {
	return &ReservationService{pool: pool}
}

const candidateSQL = `
SELECT id
FROM stock_units
WHERE product_id = $1
  AND status = 'available'
  AND (expires_at IS NULL OR expires_at > now())
ORDER BY random()
LIMIT 1`

const claimSQL = `
UPDATE stock_units
SET status = 'reserved', updated_at = now()
WHERE id = $1 AND status = 'available'
RETURNING id, product_id, supplier_id, expires_at, content`

// ReserveOne picks an arbitrary available unit and attempts the
// available → reserved transition. Losing the race against another claimant
// moves on to a different candidate; running out of candidates reports
// ErrExhausted.
func (s *ReservationService) ReserveOne(ctx context.Context, productID string) (*Unit, error) {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		var candidate uuid.UUID
		err := s.pool.QueryRow(ctx, candidateSQL, productID).Scan(&candidate)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExhausted
		}
		if err != nil {
			return nil, fmt.Errorf("select candidate unit: %w", err)
		}

		u := Unit{Status: UnitReserved}
		err = s.pool.QueryRow(ctx, claimSQL, candidate).
			Scan(&u.ID, &u.ProductID, &u.SupplierID, &u.ExpiresAt, &u.Content)
		if errors.Is(err, pgx.ErrNoRows) {
			// Someone else won this unit between select and claim.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("claim unit: %w", err)
		}
		return &u, nil
	}

	return nil, ErrExhausted
}

// ReserveMany claims up to quantity units, stopping early on exhaustion. A
// short result is normal and returned without error; only a backing-store
// failure is an error, and units already claimed are returned alongside it so
// the caller can roll them back.
func (s *ReservationService) ReserveMany(ctx context.Context, productID string, quantity int) ([]Unit, error) {
	units := make([]Unit, 0, quantity)
	for i := 0; i < quantity; i++ {
		u, err := s.ReserveOne(ctx, productID)
		if errors.Is(err, ErrExhausted) {
			return units, nil
		}
		if err != nil {
			return units, err
		}
		units = append(units, *u)
	}
	return units, nil
}

// Release rolls reserved units back to available, e.g. when downstream
// delivery fails. Units not currently reserved are left alone.
func (s *ReservationService) Release(ctx context.Context, unitIDs []uuid.UUID) error {
	if len(unitIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE stock_units
		SET status = 'available', updated_at = now()
		WHERE id = ANY($1) AND status = 'reserved'
	`, unitIDs)
	if err != nil {
		return fmt.Errorf("release units: %w", err)
	}
	return nil
}

// MarkSold finalizes reserved units once their content has been handed to the
// buyer. It refuses to skip the reserved state.
func (s *ReservationService) MarkSold(ctx context.Context, unitIDs []uuid.UUID) error {
	if len(unitIDs) == 0 {
		return nil
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE stock_units
		SET status = 'sold', updated_at = now()
		WHERE id = ANY($1) AND status = 'reserved'
	`, unitIDs)
	if err != nil {
		return fmt.Errorf("mark units sold: %w", err)
	}
	if int(tag.RowsAffected()) != len(unitIDs) {
		return ErrInvalidTransition
	}
	return nil
}
