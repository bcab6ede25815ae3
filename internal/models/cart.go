package models

import "time"

type Cart struct {
	ID        string    `db:"id" json:"_id"`
	UserID    string    `db:"user_id" json:"user"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CartItem copies the product fields at the time it was added. Price is the
// line total (unit price * quantity), not the unit price.
type CartItem struct {
	ID          string    `db:"id" json:"_id"`
	CartID      string    `db:"cart_id" json:"cart"`
	ProductID   string    `db:"product_id" json:"product"`
	Name        string    `db:"name" json:"name"`
	Price       float64   `db:"price" json:"price"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image"`
	Quantity    int       `db:"quantity" json:"quantity"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// UnitPrice recovers the per-unit price from the stored line total.
func (c CartItem) UnitPrice() float64 {
	if c.Quantity <= 0 {
		return c.Price
	}
	return c.Price / float64(c.Quantity)
}
