// Package dbtest opens throwaway SQLite databases with the production schema.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storefront/internal/db"
)

// New returns a migrated in-memory database private to t.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	conn, err := db.Connect(context.Background(), db.Config{Driver: "sqlite3", URL: dsn})
	if err != nil {
		t.Fatalf("dbtest: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}
