package models

import (
	"database/sql"
	"time"
)

const DefaultRole = "DEFAULT"

const (
	ProviderGithub      = "github"
	ProviderCredentials = "credentials"
)

type Role struct {
	ID        string    `db:"id" json:"_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type User struct {
	ID        string         `db:"id" json:"_id"`
	Email     string         `db:"email" json:"email"`
	Password  sql.NullString `db:"password_hash" json:"-"`
	RoleID    string         `db:"role_id" json:"role"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// Account links a provider-issued identifier to a user.
type Account struct {
	ID           string    `db:"id" json:"_id"`
	ProviderID   string    `db:"provider_id" json:"providerId"`
	ProviderType string    `db:"provider_type" json:"providerType"`
	UserID       string    `db:"user_id" json:"userId"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
