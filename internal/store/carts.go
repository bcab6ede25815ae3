package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storefront/internal/models"
)

const (
	cartColumns     = `id, user_id, created_at, updated_at`
	cartItemColumns = `id, cart_id, product_id, name, price, description, image, quantity, created_at, updated_at`
)

// GetOrCreateCart returns the user's cart, creating it on first use. The
// UNIQUE(user_id) constraint keeps it to one cart per user.
func GetOrCreateCart(ctx context.Context, q sqlx.ExtContext, userID string) (*models.Cart, error) {
	ts := now()
	if _, err := exec(ctx, q, `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`, newID(), userID, ts, ts); err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return FindCart(ctx, q, userID)
}

func FindCart(ctx context.Context, q sqlx.ExtContext, userID string) (*models.Cart, error) {
	var c models.Cart
	if err := get(ctx, q, &c, `SELECT `+cartColumns+` FROM carts WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCartItems returns the items in the user's cart, oldest first. A user
// without a cart has no items.
func ListCartItems(ctx context.Context, q sqlx.ExtContext, userID string) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := sqlx.SelectContext(ctx, q, &items, q.Rebind(`
		SELECT ci.id, ci.cart_id, ci.product_id, ci.name, ci.price, ci.description,
		       ci.image, ci.quantity, ci.created_at, ci.updated_at
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = ?
		ORDER BY ci.created_at, ci.name
	`), userID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetCartItem looks an item up by id within the user's cart.
func GetCartItem(ctx context.Context, q sqlx.ExtContext, userID, itemID string) (*models.CartItem, error) {
	var item models.CartItem
	err := get(ctx, q, &item, `
		SELECT `+cartItemColumns+` FROM cart_items
		WHERE id = ? AND cart_id IN (SELECT id FROM carts WHERE user_id = ?)
	`, itemID, userID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddToCart puts one unit of the product in the user's cart. A product already
// in the cart (matched by name) gains one unit and its line total is rescaled
// and rounded to cents;
// otherwise a new line with quantity 1 is created. Returns ErrNotFound for an
// unknown product.
func AddToCart(ctx context.Context, db *sqlx.DB, userID, productID string) (*models.CartItem, error) {
	var item models.CartItem

	err := WithTx(ctx, db, func(tx *sqlx.Tx) error {
		product, err := GetProduct(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("product %q: %w", productID, err)
		}

		cart, err := GetOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		ts := now()
		var itemID string
		err = get(ctx, tx, &itemID, `
			INSERT INTO cart_items (id, cart_id, product_id, name, price, description, image, quantity, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT (cart_id, name) DO UPDATE SET
				quantity   = cart_items.quantity + 1,
				price      = ROUND(CAST(cart_items.price / cart_items.quantity * (cart_items.quantity + 1) AS NUMERIC), 2),
				updated_at = excluded.updated_at
			RETURNING id
		`, newID(), cart.ID, product.ID, product.Name, product.Price, product.Description, product.Image, ts, ts)
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		return get(ctx, tx, &item, `SELECT `+cartItemColumns+` FROM cart_items WHERE id = ?`, itemID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AdjustCartItem moves the quantity of one item in the user's cart by one
// unit. add wins when both flags are set; minus never takes the quantity
// below 1. The update is a single statement so concurrent adjustments do not
// lose each other's writes.
func AdjustCartItem(ctx context.Context, q sqlx.ExtContext, userID, itemID string, add, minus bool) (*models.CartItem, error) {
	var query string
	switch {
	case add:
		query = `
			UPDATE cart_items SET
				quantity   = quantity + 1,
				price      = ROUND(CAST(price / quantity * (quantity + 1) AS NUMERIC), 2),
				updated_at = ?
			WHERE id = ? AND cart_id IN (SELECT id FROM carts WHERE user_id = ?)`
	case minus:
		query = `
			UPDATE cart_items SET
				quantity   = quantity - 1,
				price      = ROUND(CAST(price / quantity * (quantity - 1) AS NUMERIC), 2),
				updated_at = ?
			WHERE id = ? AND quantity > 1 AND cart_id IN (SELECT id FROM carts WHERE user_id = ?)`
	default:
		return GetCartItem(ctx, q, userID, itemID)
	}

	if _, err := exec(ctx, q, query, now(), itemID, userID); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return GetCartItem(ctx, q, userID, itemID)
}

// DeleteCartItem removes one item from the user's cart. The cart itself is
// kept even when it becomes empty.
func DeleteCartItem(ctx context.Context, q sqlx.ExtContext, userID, itemID string) error {
	res, err := exec(ctx, q, `
		DELETE FROM cart_items
		WHERE id = ? AND cart_id IN (SELECT id FROM carts WHERE user_id = ?)
	`, itemID, userID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
