package promo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInvalidCode covers unknown, expired and fully used codes alike; callers
// surface it as a user-facing validation message, never retry it.
var ErrInvalidCode = errors.New("invalid or expired promo code")

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	pool DBPool
}

func NewRepository(pool DBPool) *Repository {
	return &Repository{pool: pool}
}

const validCodeCond = `
code = $1
AND (expires_at IS NULL OR expires_at > now())
AND (max_uses = 0 OR used < max_uses)`

// ValidatePromoCode resolves a code to its discount percent without consuming
// a use.
func (r *Repository) ValidatePromoCode(ctx context.Context, code string) (float64, error) {
	var percent float64
	row := r.pool.QueryRow(ctx, `SELECT percent FROM promo_codes WHERE `+validCodeCond, code)
	if err := row.Scan(&percent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInvalidCode
		}
		return 0, fmt.Errorf("select promo code: %w", err)
	}
	return percent, nil
}

// RedeemPromoCode consumes one use at checkout. The conditional update keeps
// the use count from overshooting max_uses under concurrent checkouts.
func (r *Repository) RedeemPromoCode(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE promo_codes SET used = used + 1 WHERE `+validCodeCond, code)
	if err != nil {
		return fmt.Errorf("redeem promo code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidCode
	}
	return nil
}
