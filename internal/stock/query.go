package stock

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// QueryService answers "how many units of product P are sellable right now,
// and at what discount". Expired units never count as sellable.
type QueryService struct {
	pool DBPool
}

func NewQueryService(pool DBPool) *QueryService {
	return &QueryService{pool: pool}
}

const availabilitySQL = `
WITH avail AS (
    SELECT count(*) AS cnt
    FROM stock_units
    WHERE product_id = $1
      AND status = 'available'
      AND (expires_at IS NULL OR expires_at > now())
)
SELECT avail.cnt,
       COALESCE((SELECT percent
                 FROM stock_discounts
                 WHERE product_id = $1 AND min_quantity <= avail.cnt
                 ORDER BY min_quantity DESC
                 LIMIT 1), 0)
FROM avail`

// GetAvailableStock reflects reservations promptly: a unit flipped to
// reserved disappears from the count on the next call.
func (s *QueryService) GetAvailableStock(ctx context.Context, productID string) (Availability, error) {
	a := Availability{ProductID: productID}
	row := s.pool.QueryRow(ctx, availabilitySQL, productID)
	if err := row.Scan(&a.Count, &a.DiscountPercent); err != nil {
		return Availability{}, fmt.Errorf("query availability: %w", err)
	}
	return a, nil
}
