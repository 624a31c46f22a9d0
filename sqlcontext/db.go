package sqlcontext

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/store"
	"github.com/getpup/pupsourcing-dbcontext/store/sqlstore"
)

// DB is the base persistence context. Application contexts embed *DB to inherit
// Migrate and CanConnect, which make them a dbcontext.Context and dbcontext.Connectable.
type DB struct {
	opts *Options
}

// Compile-time checks that DB implements the context capabilities.
var (
	_ dbcontext.Context     = (*DB)(nil)
	_ dbcontext.Connectable = (*DB)(nil)
)

// New creates a context bound to opts. No connection is made until first use.
func New(opts *Options) (*DB, error) {
	if opts == nil {
		return nil, fmt.Errorf("options are required")
	}
	return &DB{opts: opts}, nil
}

// Options returns the options the context was created with.
func (d *DB) Options() *Options {
	return d.opts
}

// Dialect returns the context's SQL dialect.
func (d *DB) Dialect() dbcontext.Dialect {
	return d.opts.Dialect
}

// Conn returns the shared connection pool.
func (d *DB) Conn(ctx context.Context) (*sql.DB, error) {
	return d.opts.Open(ctx)
}

// Rebind rewrites '?' placeholders for the context's dialect.
func (d *DB) Rebind(query string) string {
	return d.opts.Dialect.Rebind(query)
}

// CanConnect pings the database.
func (d *DB) CanConnect(ctx context.Context) error {
	conn, err := d.Conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", d.opts.Dialect, err)
	}
	return nil
}

// Migrate applies every pending migration file.
// A context without migrations only ensures the ledger table exists.
func (d *DB) Migrate(ctx context.Context) error {
	conn, ledger, err := d.ledger(ctx)
	if err != nil {
		return err
	}
	_, err = ApplyMigrations(ctx, conn, ledger, d.opts.Migrations, d.opts.MigrationsDir)
	return err
}

// PendingMigrations returns the names of migration files that have not been applied yet.
func (d *DB) PendingMigrations(ctx context.Context) ([]string, error) {
	_, ledger, err := d.ledger(ctx)
	if err != nil {
		return nil, err
	}
	if err := ledger.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return PendingMigrations(ctx, ledger, d.opts.Migrations, d.opts.MigrationsDir)
}

// AppliedMigrations returns the migrations recorded in the ledger.
func (d *DB) AppliedMigrations(ctx context.Context) ([]dbcontext.AppliedMigration, error) {
	_, ledger, err := d.ledger(ctx)
	if err != nil {
		return nil, err
	}
	if err := ledger.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return ledger.AppliedMigrations(ctx)
}

func (d *DB) ledger(ctx context.Context) (*sql.DB, store.MigrationStore, error) {
	conn, err := d.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	if d.opts.MigrationStore != nil {
		return conn, d.opts.MigrationStore, nil
	}

	ledger, err := sqlstore.NewWithConfig(conn, d.opts.Dialect, sqlstore.TableConfig{LedgerTable: d.opts.MigrationsTable})
	if err != nil {
		return nil, nil, err
	}
	return conn, ledger, nil
}
