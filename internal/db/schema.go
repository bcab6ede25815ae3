package db

// Column types are limited to what Postgres and SQLite both understand.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		role_id       TEXT NOT NULL REFERENCES roles(id),
		created_at    TIMESTAMP NOT NULL,
		updated_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		provider_id   TEXT NOT NULL UNIQUE,
		provider_type TEXT NOT NULL,
		user_id       TEXT NOT NULL REFERENCES users(id),
		created_at    TIMESTAMP NOT NULL,
		updated_at    TIMESTAMP NOT NULL,
		UNIQUE (user_id, provider_type)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		price       DOUBLE PRECISION NOT NULL,
		description TEXT NOT NULL,
		image       TEXT NOT NULL,
		category_id TEXT NOT NULL REFERENCES categories(id),
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS products_category_id_idx ON products (category_id)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL UNIQUE REFERENCES users(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id          TEXT PRIMARY KEY,
		cart_id     TEXT NOT NULL REFERENCES carts(id),
		product_id  TEXT NOT NULL,
		name        TEXT NOT NULL,
		price       DOUBLE PRECISION NOT NULL,
		description TEXT NOT NULL,
		image       TEXT NOT NULL,
		quantity    INTEGER NOT NULL CHECK (quantity >= 1),
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL,
		UNIQUE (cart_id, name)
	)`,
}
