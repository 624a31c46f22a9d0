package store

import (
	"context"
	"database/sql"

	"github.com/getpup/pupsourcing-dbcontext"
)

// Execer executes a statement. *sql.DB, *sql.Tx and *sql.Conn all satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// MigrationStore records which migration files have been applied to a schema.
// Implementations must be safe for concurrent access.
type MigrationStore interface {
	// EnsureSchema creates the ledger table if it does not exist yet.
	EnsureSchema(ctx context.Context) error

	// AppliedMigrations returns every recorded migration ordered by name.
	// Returns an empty slice if nothing has been applied.
	AppliedMigrations(ctx context.Context) ([]dbcontext.AppliedMigration, error)

	// IsApplied reports whether the named migration has been recorded.
	IsApplied(ctx context.Context, name string) (bool, error)

	// RecordMigration records name as applied through exec, which is usually the
	// transaction the migration itself ran in. Recording twice is a no-op.
	RecordMigration(ctx context.Context, exec Execer, name string) error
}
