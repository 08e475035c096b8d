package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `SELECT * FROM carts WHERE user_id = $1`

	var c Cart
	if err := sqlx.GetContext(ctx, db, &c, q, userID); err != nil {
		return Cart{}, fmt.Errorf("selecting cart: %w", err)
	}

	items, err := FetchItems(ctx, db, userID)
	if err != nil {
		return Cart{}, err
	}
	c.Items = items

	return c, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]Item, error) {
	const q = `
	SELECT ci.*, p.title, p.price FROM cart_items AS ci
	JOIN programs AS p ON p.program_id = ci.program_id
	WHERE ci.user_id = $1
	ORDER BY ci.created_at`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart items: %w", err)
	}

	return items, nil
}

// UpsertItem sets the quantity of a program in the cart, creating the
// cart row on first use.
func UpsertItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const qc = `
	INSERT INTO carts (user_id, created_at, updated_at, version)
	VALUES ($1, $2, $2, 1)
	ON CONFLICT (user_id) DO UPDATE SET updated_at = $2, version = carts.version + 1`

	if _, err := db.ExecContext(ctx, qc, it.UserID, time.Now().UTC()); err != nil {
		return fmt.Errorf("upserting cart: %w", err)
	}

	const qi = `
	INSERT INTO cart_items (user_id, program_id, quantity, created_at, updated_at)
	VALUES (:user_id, :program_id, :quantity, :created_at, :updated_at)
	ON CONFLICT (user_id, program_id) DO UPDATE SET
		quantity = EXCLUDED.quantity,
		updated_at = EXCLUDED.updated_at`

	if _, err := sqlx.NamedExecContext(ctx, db, qi, it); err != nil {
		return fmt.Errorf("upserting cart item: %w", err)
	}

	return nil
}

func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID string, programID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1 AND program_id = $2`

	if _, err := db.ExecContext(ctx, q, userID, programID); err != nil {
		return fmt.Errorf("deleting cart item: %w", err)
	}

	return nil
}

// Delete flushes every item, leaving the cart row in place.
func Delete(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("flushing cart: %w", err)
	}

	return nil
}
