package store

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storefront/internal/models"
)

const (
	categoryColumns = `id, name, created_at, updated_at`
	productColumns  = `id, name, price, description, image, category_id, created_at, updated_at`
)

func ListCategories(ctx context.Context, q sqlx.ExtContext) ([]models.Category, error) {
	categories := []models.Category{}
	if err := sqlx.SelectContext(ctx, q, &categories, `SELECT `+categoryColumns+` FROM categories ORDER BY name`); err != nil {
		return nil, err
	}
	return categories, nil
}

func FindCategoryByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Category, error) {
	var c models.Category
	if err := get(ctx, q, &c, `SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name); err != nil {
		return nil, err
	}
	return &c, nil
}

func GetCategory(ctx context.Context, q sqlx.ExtContext, id string) (*models.Category, error) {
	var c models.Category
	if err := get(ctx, q, &c, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory returns ErrConflict when the name is taken.
func CreateCategory(ctx context.Context, q sqlx.ExtContext, name string) (*models.Category, error) {
	c := models.Category{ID: newID(), Name: name, CreatedAt: now()}
	c.UpdatedAt = c.CreatedAt

	if _, err := exec(ctx, q, `
		INSERT INTO categories (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.Name, c.CreatedAt, c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &c, nil
}

func ListProductsByCategory(ctx context.Context, q sqlx.ExtContext, categoryID string) ([]models.Product, error) {
	products := []models.Product{}
	err := sqlx.SelectContext(ctx, q, &products,
		q.Rebind(`SELECT `+productColumns+` FROM products WHERE category_id = ? ORDER BY name`), categoryID)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func FindProductByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Product, error) {
	var p models.Product
	if err := get(ctx, q, &p, `SELECT `+productColumns+` FROM products WHERE name = ?`, name); err != nil {
		return nil, err
	}
	return &p, nil
}

func GetProduct(ctx context.Context, q sqlx.ExtContext, id string) (*models.Product, error) {
	var p models.Product
	if err := get(ctx, q, &p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

type NewProduct struct {
	Name        string
	Price       float64
	Description string
	Image       string
	CategoryID  string
}

// CreateProduct stores the price rounded to cents. It returns ErrNotFound for
// an unknown category and ErrConflict when the product name is taken.
func CreateProduct(ctx context.Context, q sqlx.ExtContext, in NewProduct) (*models.Product, error) {
	if _, err := GetCategory(ctx, q, in.CategoryID); err != nil {
		return nil, fmt.Errorf("category %q: %w", in.CategoryID, err)
	}

	p := models.Product{
		ID:          newID(),
		Name:        in.Name,
		Price:       math.Round(in.Price*100) / 100,
		Description: in.Description,
		Image:       in.Image,
		CategoryID:  in.CategoryID,
		CreatedAt:   now(),
	}
	p.UpdatedAt = p.CreatedAt

	if _, err := exec(ctx, q, `
		INSERT INTO products (id, name, price, description, image, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Price, p.Description, p.Image, p.CategoryID, p.CreatedAt, p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}
