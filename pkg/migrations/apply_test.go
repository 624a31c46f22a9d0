package migrations_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/pkg/migrations"
	"github.com/getpup/pupsourcing-dbcontext/sqlcontext"
	"github.com/getpup/pupsourcing-dbcontext/store/sqlstore"
)

func TestGeneratedMigrationsApplyWithSQLite(t *testing.T) {
	dir := t.TempDir()

	ledger := migrations.DefaultConfig()
	ledger.OutputFolder = dir
	ledger.OutputFilename = "001_ledger.sql"
	if _, err := migrations.GenerateSQLite(&ledger); err != nil {
		t.Fatalf("GenerateSQLite failed: %v", err)
	}

	skeleton := migrations.DefaultConfig()
	skeleton.OutputFolder = dir
	skeleton.OutputFilename = "002_products.sql"
	path, err := migrations.GenerateMigration(&skeleton)
	if err != nil {
		t.Fatalf("GenerateMigration failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read skeleton: %v", err)
	}
	filled := strings.Replace(string(content), "-- +migrate Up\n", "-- +migrate Up\nCREATE TABLE products (id INTEGER PRIMARY KEY);\n", 1)
	if err := os.WriteFile(path, []byte(filled), 0o600); err != nil {
		t.Fatalf("Failed to fill skeleton: %v", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "apply.db"))
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	defer db.Close()

	ledgerStore, err := sqlstore.New(db, dbcontext.DialectSQLite)
	if err != nil {
		t.Fatalf("Failed to create ledger store: %v", err)
	}

	applied, err := sqlcontext.ApplyMigrations(context.Background(), db, ledgerStore, os.DirFS(dir), ".")
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if len(applied) != 2 || applied[0] != "001_ledger.sql" || applied[1] != "002_products.sql" {
		t.Errorf("unexpected applied migrations: %v", applied)
	}

	if _, err := db.Exec("INSERT INTO products (id) VALUES (1)"); err != nil {
		t.Errorf("products table not created: %v", err)
	}
}
