package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storefront/internal/models"
)

const (
	roleColumns    = `id, name, created_at, updated_at`
	userColumns    = `id, email, password_hash, role_id, created_at, updated_at`
	accountColumns = `id, provider_id, provider_type, user_id, created_at, updated_at`
)

// GetOrCreateRole returns the role called name, inserting it first if it does
// not exist yet. The UNIQUE(name) constraint makes concurrent callers agree on
// one row.
func GetOrCreateRole(ctx context.Context, q sqlx.ExtContext, name string) (*models.Role, error) {
	ts := now()
	if _, err := exec(ctx, q, `
		INSERT INTO roles (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING
	`, newID(), name, ts, ts); err != nil {
		return nil, fmt.Errorf("insert role %q: %w", name, err)
	}

	var r models.Role
	if err := get(ctx, q, &r, `SELECT `+roleColumns+` FROM roles WHERE name = ?`, name); err != nil {
		return nil, fmt.Errorf("select role %q: %w", name, err)
	}
	return &r, nil
}

func GetRole(ctx context.Context, q sqlx.ExtContext, id string) (*models.Role, error) {
	var r models.Role
	if err := get(ctx, q, &r, `SELECT `+roleColumns+` FROM roles WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func FindUserByEmail(ctx context.Context, q sqlx.ExtContext, email string) (*models.User, error) {
	var u models.User
	if err := get(ctx, q, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUser(ctx context.Context, q sqlx.ExtContext, id string) (*models.User, error) {
	var u models.User
	if err := get(ctx, q, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. passwordHash may be empty for users that only
// sign in through an external provider.
func CreateUser(ctx context.Context, q sqlx.ExtContext, email, passwordHash, roleID string) (*models.User, error) {
	u := models.User{
		ID:        newID(),
		Email:     email,
		Password:  sql.NullString{String: passwordHash, Valid: passwordHash != ""},
		RoleID:    roleID,
		CreatedAt: now(),
	}
	u.UpdatedAt = u.CreatedAt

	if _, err := exec(ctx, q, `
		INSERT INTO users (id, email, password_hash, role_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.Password, u.RoleID, u.CreatedAt, u.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func FindAccountByProviderID(ctx context.Context, q sqlx.ExtContext, providerID string) (*models.Account, error) {
	var a models.Account
	if err := get(ctx, q, &a, `SELECT `+accountColumns+` FROM accounts WHERE provider_id = ?`, providerID); err != nil {
		return nil, err
	}
	return &a, nil
}

func ListAccountsByUser(ctx context.Context, q sqlx.ExtContext, userID string) ([]models.Account, error) {
	accounts := []models.Account{}
	err := sqlx.SelectContext(ctx, q, &accounts,
		q.Rebind(`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY created_at`), userID)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func CreateAccount(ctx context.Context, q sqlx.ExtContext, providerID, providerType, userID string) (*models.Account, error) {
	a := models.Account{
		ID:           newID(),
		ProviderID:   providerID,
		ProviderType: providerType,
		UserID:       userID,
		CreatedAt:    now(),
	}
	a.UpdatedAt = a.CreatedAt

	if _, err := exec(ctx, q, `
		INSERT INTO accounts (id, provider_id, provider_type, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.ProviderID, a.ProviderType, a.UserID, a.CreatedAt, a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &a, nil
}
