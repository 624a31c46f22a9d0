package migrations

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/store"
	"github.com/getpup/pupsourcing-dbcontext/store/sqlstore"
)

const timestampLayout = "20060102150405"

// validateConfig validates all configuration values to prevent SQL injection.
func validateConfig(config *Config) error {
	if err := store.ValidateIdentifier(config.Name, "Name"); err != nil {
		return err
	}
	if err := store.ValidateIdentifier(config.LedgerTable, "LedgerTable"); err != nil {
		return err
	}
	return nil
}

// Config configures migration generation.
type Config struct {
	// OutputFolder is the directory where the migration file will be written
	OutputFolder string

	// OutputFilename is the name of the migration file.
	// Default: "<timestamp>_<Name>.sql"
	OutputFilename string

	// Name describes the migration, e.g. "add_products"
	Name string

	// LedgerTable is the name of the table recording applied migrations
	LedgerTable string

	// Now returns the generation time (default: time.Now)
	Now func() time.Time
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		OutputFolder: "migrations",
		Name:         "init",
		LedgerTable:  sqlstore.DefaultTableConfig().LedgerTable,
	}
}

func (c *Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Config) filename(t time.Time) string {
	if c.OutputFilename != "" {
		return c.OutputFilename
	}
	return fmt.Sprintf("%s_%s.sql", t.Format(timestampLayout), c.Name)
}

// GenerateMigration writes an empty migration with Up and Down sections.
// Returns the path of the written file.
func GenerateMigration(config *Config) (string, error) {
	if err := store.ValidateIdentifier(config.Name, "Name"); err != nil {
		return "", fmt.Errorf("invalid configuration: %w", err)
	}

	t := config.now()
	sql := fmt.Sprintf(`-- Migration: %s
-- Generated: %s

-- +migrate Up


-- +migrate Down

`, config.Name, t.Format(time.RFC3339))

	return write(config, config.filename(t), sql)
}

// GeneratePostgres generates the PostgreSQL ledger table migration.
func GeneratePostgres(config *Config) (string, error) {
	return generateLedger(config, dbcontext.DialectPostgres, "PostgreSQL")
}

// GenerateMySQL generates the MySQL/MariaDB ledger table migration.
func GenerateMySQL(config *Config) (string, error) {
	return generateLedger(config, dbcontext.DialectMySQL, "MySQL/MariaDB")
}

// GenerateSQLite generates the SQLite ledger table migration.
func GenerateSQLite(config *Config) (string, error) {
	return generateLedger(config, dbcontext.DialectSQLite, "SQLite")
}

// Generate dispatches on dialect.
func Generate(dialect dbcontext.Dialect, config *Config) (string, error) {
	switch dialect {
	case dbcontext.DialectPostgres:
		return GeneratePostgres(config)
	case dbcontext.DialectMySQL:
		return GenerateMySQL(config)
	case dbcontext.DialectSQLite:
		return GenerateSQLite(config)
	default:
		return "", fmt.Errorf("unsupported dialect %q: supported dialects are postgres, mysql, sqlite3", dialect)
	}
}

func generateLedger(config *Config, dialect dbcontext.Dialect, database string) (string, error) {
	// Validate configuration to prevent SQL injection
	if err := validateConfig(config); err != nil {
		return "", fmt.Errorf("invalid configuration: %w", err)
	}

	tables := sqlstore.TableConfig{LedgerTable: config.LedgerTable}
	t := config.now()
	sql := fmt.Sprintf(`-- Migration Ledger Migration
-- Generated: %s
-- Database: %s

-- +migrate Up
%s
-- +migrate Down
%s`,
		t.Format(time.RFC3339),
		database,
		sqlstore.MigrationUp(dialect, tables),
		sqlstore.MigrationDown(dialect, tables),
	)

	return write(config, config.filename(t), sql)
}

func write(config *Config, filename, sql string) (string, error) {
	// Ensure output folder exists
	if err := os.MkdirAll(config.OutputFolder, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	outputPath := filepath.Join(config.OutputFolder, filename)
	if err := os.WriteFile(outputPath, []byte(sql), 0o600); err != nil {
		return "", fmt.Errorf("failed to write migration file: %w", err)
	}

	return outputPath, nil
}
