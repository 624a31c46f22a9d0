package sqlstore

import (
	"fmt"

	"github.com/getpup/pupsourcing-dbcontext"
)

// TableConfig configures the ledger table used to record applied migrations.
type TableConfig struct {
	// LedgerTable is the name of the table storing applied migration names.
	LedgerTable string
}

// DefaultTableConfig returns the default table configuration.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		LedgerTable: "schema_migrations",
	}
}

// MigrationUp returns the SQL to create the ledger table for the given dialect.
// The statement is idempotent. Table names must already be validated.
func MigrationUp(dialect dbcontext.Dialect, config TableConfig) string {
	table := quote(dialect, config.LedgerTable)

	switch dialect {
	case dbcontext.DialectMySQL:
		return fmt.Sprintf(`-- Create %s ledger table
CREATE TABLE IF NOT EXISTS %s (
    name VARCHAR(255) PRIMARY KEY,
    applied_at BIGINT NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`, config.LedgerTable, table)
	case dbcontext.DialectSQLite:
		return fmt.Sprintf(`-- Create %s ledger table
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, config.LedgerTable, table)
	default:
		return fmt.Sprintf(`-- Create %s ledger table
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
);
`, config.LedgerTable, table)
	}
}

// MigrationDown returns the SQL to drop the ledger table for the given dialect.
func MigrationDown(dialect dbcontext.Dialect, config TableConfig) string {
	return fmt.Sprintf(`-- Drop %s ledger table
DROP TABLE IF EXISTS %s;
`, config.LedgerTable, quote(dialect, config.LedgerTable))
}
