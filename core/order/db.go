package order

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders
		(order_id, user_id, status, payment_method, subtotal, processing_fee,
		tax, discount, total, first_name, last_name, email, phone, address,
		city, state, zip_code, created_at, updated_at)
	VALUES
		(:order_id, :user_id, :status, :payment_method, :subtotal, :processing_fee,
		:tax, :discount, :total, :first_name, :last_name, :email, :phone, :address,
		:city, :state, :zip_code, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO order_items (order_id, program_id, item_type, price, quantity, created_at)
	VALUES (:order_id, :program_id, :item_type, :price, :quantity, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, orderID string) (Order, error) {
	const q = `SELECT * FROM orders WHERE order_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, orderID); err != nil {
		return Order{}, fmt.Errorf("selecting order[%s]: %w", orderID, err)
	}

	return ord, nil
}

// FetchOwned keys on the owner too, so a foreign order and a missing
// one are the same ErrNoRows.
func FetchOwned(ctx context.Context, db sqlx.ExtContext, orderID string, userID string) (Order, error) {
	const q = `SELECT * FROM orders WHERE order_id = $1 AND user_id = $2`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, orderID, userID); err != nil {
		return Order{}, fmt.Errorf("selecting order[%s] of user[%s]: %w", orderID, userID, err)
	}

	return ord, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string, page int, limit int) ([]Order, error) {
	const q = `
	SELECT * FROM orders
	WHERE user_id = $1
	ORDER BY created_at DESC
	OFFSET $2 LIMIT $3`

	ords := []Order{}
	if err := sqlx.SelectContext(ctx, db, &ords, q, userID, (page-1)*limit, limit); err != nil {
		return nil, fmt.Errorf("selecting orders of user[%s]: %w", userID, err)
	}

	return ords, nil
}

func CountByUser(ctx context.Context, db sqlx.ExtContext, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM orders WHERE user_id = $1`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, userID); err != nil {
		return 0, fmt.Errorf("counting orders of user[%s]: %w", userID, err)
	}

	return n, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, orderID string) ([]Item, error) {
	const q = `SELECT * FROM order_items WHERE order_id = $1 ORDER BY created_at`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, orderID); err != nil {
		return nil, fmt.Errorf("selecting items of order[%s]: %w", orderID, err)
	}

	return items, nil
}

func FetchHistory(ctx context.Context, db sqlx.ExtContext, orderID string) ([]History, error) {
	const q = `SELECT * FROM order_history WHERE order_id = $1 ORDER BY created_at`

	hist := []History{}
	if err := sqlx.SelectContext(ctx, db, &hist, q, orderID); err != nil {
		return nil, fmt.Errorf("selecting history of order[%s]: %w", orderID, err)
	}

	return hist, nil
}

// AddHistory appends a trail entry and overwrites the current status
// in the same breath. Run it inside a transaction with whatever other
// writes the transition implies.
func AddHistory(ctx context.Context, db sqlx.ExtContext, h History) error {
	const qh = `
	INSERT INTO order_history (order_id, status, note, actor, created_at)
	VALUES (:order_id, :status, :note, :actor, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, qh, h); err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	const qs = `UPDATE orders SET status = $2, updated_at = $3 WHERE order_id = $1`

	if _, err := db.ExecContext(ctx, qs, h.OrderID, h.Status, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating status of order[%s]: %w", h.OrderID, err)
	}

	return nil
}
