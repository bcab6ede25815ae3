package models

import "time"

type Category struct {
	ID        string    `db:"id" json:"_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Product struct {
	ID          string    `db:"id" json:"_id"`
	Name        string    `db:"name" json:"name"`
	Price       float64   `db:"price" json:"price"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image"`
	CategoryID  string    `db:"category_id" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
