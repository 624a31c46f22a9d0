package migrations

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/getpup/pupsourcing-dbcontext"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestGenerateMigration(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultConfig()
	config.OutputFolder = tmpDir
	config.Name = "add_products"
	config.Now = fixedNow

	path, err := GenerateMigration(&config)
	if err != nil {
		t.Fatalf("GenerateMigration failed: %v", err)
	}

	if want := filepath.Join(tmpDir, "20260314092653_add_products.sql"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	sql := string(content)
	for _, required := range []string{"-- Migration: add_products", "-- +migrate Up", "-- +migrate Down", "2026-03-14T09:26:53Z"} {
		if !strings.Contains(sql, required) {
			t.Errorf("migration missing required string: %s", required)
		}
	}
	if strings.Index(sql, "-- +migrate Up") > strings.Index(sql, "-- +migrate Down") {
		t.Error("Up section must precede Down section")
	}
}

func TestGenerateMigration_CustomFilename(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultConfig()
	config.OutputFolder = filepath.Join(tmpDir, "nested", "migrations")
	config.OutputFilename = "002_custom.sql"

	path, err := GenerateMigration(&config)
	if err != nil {
		t.Fatalf("GenerateMigration failed: %v", err)
	}
	if filepath.Base(path) != "002_custom.sql" {
		t.Errorf("unexpected filename: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestGeneratePostgres(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultConfig()
	config.OutputFolder = tmpDir
	config.OutputFilename = "test_migration.sql"

	path, err := GeneratePostgres(&config)
	if err != nil {
		t.Fatalf("GeneratePostgres failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	sql := string(content)
	requiredStrings := []string{
		"-- Database: PostgreSQL",
		"-- +migrate Up",
		`CREATE TABLE IF NOT EXISTS "schema_migrations"`,
		"name TEXT PRIMARY KEY",
		"applied_at BIGINT NOT NULL",
		"-- +migrate Down",
		`DROP TABLE IF EXISTS "schema_migrations"`,
	}

	for _, required := range requiredStrings {
		if !strings.Contains(sql, required) {
			t.Errorf("PostgreSQL migration missing required string: %s", required)
		}
	}
}

func TestGenerateMySQL(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultConfig()
	config.OutputFolder = tmpDir
	config.OutputFilename = "test_migration.sql"
	config.LedgerTable = "catalog_migrations"

	path, err := GenerateMySQL(&config)
	if err != nil {
		t.Fatalf("GenerateMySQL failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	sql := string(content)
	requiredStrings := []string{
		"-- Database: MySQL/MariaDB",
		"CREATE TABLE IF NOT EXISTS `catalog_migrations`",
		"name VARCHAR(255) PRIMARY KEY",
		"ENGINE=InnoDB",
		"DROP TABLE IF EXISTS `catalog_migrations`",
	}

	for _, required := range requiredStrings {
		if !strings.Contains(sql, required) {
			t.Errorf("MySQL migration missing required string: %s", required)
		}
	}
}

func TestGenerateSQLite(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultConfig()
	config.OutputFolder = tmpDir
	config.OutputFilename = "test_migration.sql"

	path, err := GenerateSQLite(&config)
	if err != nil {
		t.Fatalf("GenerateSQLite failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	sql := string(content)
	requiredStrings := []string{
		"-- Database: SQLite",
		`CREATE TABLE IF NOT EXISTS "schema_migrations"`,
		"applied_at INTEGER NOT NULL",
	}

	for _, required := range requiredStrings {
		if !strings.Contains(sql, required) {
			t.Errorf("SQLite migration missing required string: %s", required)
		}
	}
}

func TestGenerate_DispatchesOnDialect(t *testing.T) {
	for _, dialect := range []dbcontext.Dialect{dbcontext.DialectPostgres, dbcontext.DialectMySQL, dbcontext.DialectSQLite} {
		config := DefaultConfig()
		config.OutputFolder = t.TempDir()
		config.OutputFilename = "ledger.sql"

		if _, err := Generate(dialect, &config); err != nil {
			t.Errorf("Generate(%s) failed: %v", dialect, err)
		}
	}

	config := DefaultConfig()
	config.OutputFolder = t.TempDir()
	if _, err := Generate("oracle", &config); err == nil {
		t.Error("expected error for unsupported dialect")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.OutputFolder != "migrations" {
		t.Errorf("Expected OutputFolder 'migrations', got %s", config.OutputFolder)
	}
	if config.Name != "init" {
		t.Errorf("Expected Name 'init', got %s", config.Name)
	}
	if config.LedgerTable != "schema_migrations" {
		t.Errorf("Expected LedgerTable 'schema_migrations', got %s", config.LedgerTable)
	}
	if config.OutputFilename != "" {
		t.Errorf("Expected empty OutputFilename, got %s", config.OutputFilename)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty name", mutate: func(c *Config) { c.Name = "" }, wantErr: true},
		{name: "name with dash", mutate: func(c *Config) { c.Name = "add-products" }, wantErr: true},
		{name: "injection in ledger", mutate: func(c *Config) { c.LedgerTable = "x; DROP TABLE users" }, wantErr: true},
		{name: "ledger starting with digit", mutate: func(c *Config) { c.LedgerTable = "1ledger" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			err := validateConfig(&config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerators_RejectInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.OutputFolder = t.TempDir()
	config.LedgerTable = "bad table"

	if _, err := GeneratePostgres(&config); err == nil {
		t.Error("GeneratePostgres accepted invalid ledger table")
	}
	if _, err := GenerateMySQL(&config); err == nil {
		t.Error("GenerateMySQL accepted invalid ledger table")
	}
	if _, err := GenerateSQLite(&config); err == nil {
		t.Error("GenerateSQLite accepted invalid ledger table")
	}

	config = DefaultConfig()
	config.OutputFolder = t.TempDir()
	config.Name = "bad name"
	if _, err := GenerateMigration(&config); err == nil {
		t.Error("GenerateMigration accepted invalid name")
	}
}
