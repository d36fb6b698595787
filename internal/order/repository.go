package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("order not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	pool DBPool
}

func NewRepository(pool DBPool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, promo_code, discount_percent, subtotal, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, o.ID, o.UserID, o.Status, o.PromoCode, o.DiscountPercent, o.Subtotal, o.Total, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, delivered_quantity, unit_price, discount_percent, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, it.ID, o.ID, it.ProductID, it.ProductName, it.Quantity, it.DeliveredQuantity, it.UnitPrice, it.DiscountPercent, it.TotalPrice)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecordDelivery stores the fulfillment outcome for one line: how many units
// were handed over and which concrete units they were.
func (r *Repository) RecordDelivery(ctx context.Context, itemID uuid.UUID, delivered int, unitIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE order_items SET delivered_quantity = $2 WHERE id = $1
	`, itemID, delivered)
	if err != nil {
		return fmt.Errorf("update order_item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	for _, unitID := range unitIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_item_units (order_item_id, unit_id) VALUES ($1, $2)
		`, itemID, unitID)
		if err != nil {
			return fmt.Errorf("insert order_item_unit: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	var o Order
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, status, promo_code, discount_percent, subtotal, total, created_at
		FROM orders WHERE id = $1
	`, orderID)
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PromoCode, &o.DiscountPercent, &o.Subtotal, &o.Total, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, status, promo_code, discount_percent, subtotal, total, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.PromoCode, &o.DiscountPercent, &o.Subtotal, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *Repository) itemsFor(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, delivered_quantity, unit_price, discount_percent, total_price
		FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.DeliveredQuantity, &it.UnitPrice, &it.DiscountPercent, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}
