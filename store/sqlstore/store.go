package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/store"
	"github.com/lib/pq"
)

// Store is a SQL implementation of MigrationStore.
// It keeps the ledger in a single table inside the migrated database.
type Store struct {
	db      *sql.DB
	dialect dbcontext.Dialect
	name    string
	table   string
}

// Compile-time check that Store implements MigrationStore.
var _ store.MigrationStore = (*Store)(nil)

// New creates a new SQL store with the default ledger table name.
func New(db *sql.DB, dialect dbcontext.Dialect) (*Store, error) {
	return NewWithConfig(db, dialect, DefaultTableConfig())
}

// NewWithConfig creates a new SQL store with a custom ledger table name.
// Returns an error if the dialect is unknown or the table name is not a safe identifier.
func NewWithConfig(db *sql.DB, dialect dbcontext.Dialect, config TableConfig) (*Store, error) {
	if !dialect.IsValid() {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err := store.ValidateIdentifier(config.LedgerTable, "LedgerTable"); err != nil {
		return nil, err
	}

	return &Store{
		db:      db,
		dialect: dialect,
		name:    config.LedgerTable,
		table:   quote(dialect, config.LedgerTable),
	}, nil
}

// EnsureSchema creates the ledger table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, MigrationUp(s.dialect, TableConfig{LedgerTable: s.name})); err != nil {
		return fmt.Errorf("failed to ensure migration ledger: %w", err)
	}
	return nil
}

// AppliedMigrations returns every recorded migration ordered by name.
func (s *Store) AppliedMigrations(ctx context.Context) ([]dbcontext.AppliedMigration, error) {
	query := fmt.Sprintf(`SELECT name, applied_at FROM %s ORDER BY name`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	applied := []dbcontext.AppliedMigration{}
	for rows.Next() {
		var (
			name      string
			appliedAt int64
		)
		if err := rows.Scan(&name, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan applied migration: %w", err)
		}
		applied = append(applied, dbcontext.AppliedMigration{
			Name:      name,
			AppliedAt: time.UnixMilli(appliedAt).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applied migrations: %w", err)
	}

	return applied, nil
}

// IsApplied reports whether the named migration has been recorded.
func (s *Store) IsApplied(ctx context.Context, name string) (bool, error) {
	query := s.dialect.Rebind(fmt.Sprintf(`SELECT 1 FROM %s WHERE name = ?`, s.table))

	var found int
	err := s.db.QueryRowContext(ctx, query, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}

	return true, nil
}

// RecordMigration records name as applied through exec. Recording twice is a no-op.
func (s *Store) RecordMigration(ctx context.Context, exec store.Execer, name string) error {
	if exec == nil {
		exec = s.db
	}

	if _, err := exec.ExecContext(ctx, s.insertQuery(), name, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}
	return nil
}

func (s *Store) insertQuery() string {
	switch s.dialect {
	case dbcontext.DialectMySQL:
		return fmt.Sprintf(`INSERT IGNORE INTO %s (name, applied_at) VALUES (?, ?)`, s.table)
	case dbcontext.DialectSQLite:
		return fmt.Sprintf(`INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)`, s.table)
	default:
		return fmt.Sprintf(`INSERT INTO %s (name, applied_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, s.table)
	}
}

// quote wraps a validated identifier in the dialect's quoting characters.
func quote(dialect dbcontext.Dialect, name string) string {
	switch dialect {
	case dbcontext.DialectMySQL:
		return "`" + name + "`"
	case dbcontext.DialectPostgres:
		return pq.QuoteIdentifier(name)
	default:
		return `"` + name + `"`
	}
}
