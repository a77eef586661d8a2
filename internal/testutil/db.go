package testutil

import (
	"database/sql"
	"os"
	"strconv"
	"testing"

	"github.com/AMV0027/gcn-final/internal/config"
	"github.com/AMV0027/gcn-final/internal/db"
)

// OpenTestDB connects to the postgres named by TEST_DB_* variables, applies
// migrations and empties every table. Tests are skipped without TEST_DB_HOST.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	port := 5432
	if v := os.Getenv("TEST_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     envOr("TEST_DB_USER", "gcn"),
		Password: envOr("TEST_DB_PASSWORD", "gcn_pass"),
		DBName:   envOr("TEST_DB_NAME", "gcn_test"),
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	for _, table := range []string{"chat_history", "embedding_cache", "pdf_images", "pdfdata"} {
		if _, err := conn.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return conn, func() {
		_ = conn.Close()
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
