package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("user not found")

// User is a Telegram identity with a store-credit balance. ReferrerID links
// the referral chain.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Balance    float64   `json:"balance"`
	ReferrerID *int64    `json:"referrerId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

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

func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, balance, referrer_id, created_at
		FROM users WHERE id = $1
	`, id)
	if err := row.Scan(&u.ID, &u.Username, &u.Balance, &u.ReferrerID, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// Register creates the user on first contact. The referrer is fixed at
// registration and never changed by later upserts.
func (r *Repository) Register(ctx context.Context, id int64, username string, referrerID *int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, referrer_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
	`, id, username, referrerID)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

// CreditBalance adds amount to the user's balance atomically and returns the
// new balance. Refund-to-balance and referral rewards both land here.
func (r *Repository) CreditBalance(ctx context.Context, id int64, amount float64) (float64, error) {
	var balance float64
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET balance = balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING balance
	`, id, amount)
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("credit balance: %w", err)
	}
	return balance, nil
}
