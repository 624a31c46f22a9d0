package sqlcontext

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/store"
)

// Options describe how a context connects to its database and where its migrations live.
// Build them with an OptionsBuilder. Options are safe for concurrent use.
type Options struct {
	// Dialect selects the SQL flavour and database/sql driver.
	Dialect dbcontext.Dialect `validate:"required,dialect"`

	// DSN is the driver-specific data source name. Required unless DB is set.
	DSN string `validate:"required_without=DB"`

	// DB is an externally owned pool. When set, DSN is ignored and Close leaves the pool open.
	DB *sql.DB

	// MaxOpenConns limits open connections (0 means unlimited).
	MaxOpenConns int `validate:"gte=0"`

	// MaxIdleConns limits idle connections (0 keeps the database/sql default).
	MaxIdleConns int `validate:"gte=0"`

	// ConnMaxLifetime closes connections older than this (0 means no limit).
	ConnMaxLifetime time.Duration `validate:"gte=0"`

	// ConnMaxIdleTime closes connections idle longer than this (0 means no limit).
	ConnMaxIdleTime time.Duration `validate:"gte=0"`

	// Migrations holds the *.sql migration files. Nil means the context has no migrations.
	Migrations fs.FS

	// MigrationsDir is the directory inside Migrations to read (default ".").
	MigrationsDir string

	// MigrationsTable is the ledger table name (default "schema_migrations").
	MigrationsTable string `validate:"required,sqlident"`

	// MigrationStore overrides the SQL ledger. Mostly useful in tests.
	MigrationStore store.MigrationStore

	mu     sync.Mutex
	pool   *sql.DB
	closed bool
}

// Open returns the shared pool, opening and configuring it on first use.
// The pool is not pinged; use DB.CanConnect for that.
func (o *Options) Open(ctx context.Context) (*sql.DB, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, fmt.Errorf("options for %s are closed", o.Dialect)
	}
	if o.pool != nil {
		return o.pool, nil
	}
	if o.DB != nil {
		o.pool = o.DB
		return o.pool, nil
	}

	pool, err := sql.Open(o.Dialect.DriverName(), o.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", o.Dialect, err)
	}
	pool.SetMaxOpenConns(o.MaxOpenConns)
	if o.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(o.MaxIdleConns)
	}
	pool.SetConnMaxLifetime(o.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(o.ConnMaxIdleTime)

	o.pool = pool
	return pool, nil
}

// Close closes the pool if these options opened it. An external DB is left open.
// Calling Close more than once is a no-op.
func (o *Options) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if o.pool == nil || o.pool == o.DB {
		return nil
	}
	return o.pool.Close()
}
