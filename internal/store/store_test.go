// Store tests run against PostgreSQL and skip when it is not reachable.
package store

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"os"
	"testing"

	"mailcanvas/internal/database"
)

// testDSN returns TEST_DATABASE_URL, or a DSN assembled from the POSTGRES_*
// variables with the docker-compose defaults.
func testDSN() string {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(envOr("POSTGRES_USER", "mailcanvas"), envOr("POSTGRES_PASSWORD", "changeme")),
		Host:     net.JoinHostPort(envOr("POSTGRES_HOST", "localhost"), envOr("POSTGRES_PORT", "5432")),
		Path:     "/" + envOr("POSTGRES_DB", "mailcanvas"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB connects to the test database with a single attempt and applies
// the migrations. The test is skipped when PostgreSQL is unreachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Connect(ctx, database.Config{DSN: testDSN(), MaxOpenConns: 4})
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// cleanTemplates deletes the named templates.
func cleanTemplates(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	if _, err := db.Exec("DELETE FROM email_templates WHERE name = ANY($1)", names); err != nil {
		t.Logf("clean templates: %v", err)
	}
}

// cleanMediaByKey deletes media rows by object key.
func cleanMediaByKey(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	if _, err := db.Exec("DELETE FROM media WHERE s3_key = ANY($1)", keys); err != nil {
		t.Logf("clean media: %v", err)
	}
}
