// Package dbtest provides an in-memory SQLite database with the application
// schema applied, for use in tests.
package dbtest

import (
	"context"
	"database/sql"
	"io/fs"
	"sort"
	"testing"

	"user_service/migrations"
	"user_service/pkg/db"
)

// NewSQLite opens a fresh in-memory database and applies every embedded
// sqlite3 up migration. The database is closed when the test ends.
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()

	database, err := db.Connect(db.Config{Driver: db.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	files, err := fs.Glob(migrations.FS, "sqlite3/*.up.sql")
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	sort.Strings(files)

	for _, name := range files {
		stmt, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if _, err := database.ExecContext(context.Background(), string(stmt)); err != nil {
			t.Fatalf("apply %s: %v", name, err)
		}
	}
	return database
}
