package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("product not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	pool DBPool
}

func NewRepository(pool DBPool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, productID string) (Product, error) {
	var p Product
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, price, stock_policy, created_at
		FROM products WHERE id = $1
	`, productID)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.StockPolicy, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price, stock_policy, created_at
		FROM products ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockPolicy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *Repository) Upsert(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, price, stock_policy)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, stock_policy = EXCLUDED.stock_policy
	`, p.ID, p.Name, p.Price, p.StockPolicy)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}
