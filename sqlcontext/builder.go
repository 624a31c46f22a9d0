package sqlcontext

import (
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/store"
	"github.com/go-sql-driver/mysql"
)

// OptionsBuilder accumulates configuration for Options.
// It is the target of the configure callback passed to persistence.AddContext.
type OptionsBuilder struct {
	opts Options
	errs []error
}

// NewOptionsBuilder creates a builder with default values.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{
		opts: Options{
			MigrationsDir:   ".",
			MigrationsTable: "schema_migrations",
		},
	}
}

// UsePostgres targets a PostgreSQL database through github.com/lib/pq.
func (b *OptionsBuilder) UsePostgres(dsn string) *OptionsBuilder {
	b.opts.Dialect = dbcontext.DialectPostgres
	b.opts.DSN = dsn
	return b
}

// UseMySQL targets a MySQL/MariaDB database through github.com/go-sql-driver/mysql.
// The DSN is normalized with MultiStatements and ParseTime enabled.
func (b *OptionsBuilder) UseMySQL(dsn string) *OptionsBuilder {
	b.opts.Dialect = dbcontext.DialectMySQL

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid mysql dsn: %w", err))
		b.opts.DSN = dsn
		return b
	}
	cfg.MultiStatements = true
	cfg.ParseTime = true
	b.opts.DSN = cfg.FormatDSN()
	return b
}

// UseSQLite targets a SQLite database file (or ":memory:") through github.com/mattn/go-sqlite3.
func (b *OptionsBuilder) UseSQLite(path string) *OptionsBuilder {
	b.opts.Dialect = dbcontext.DialectSQLite
	b.opts.DSN = path
	return b
}

// UseDB reuses an existing pool. The pool stays open when the options are closed.
func (b *OptionsBuilder) UseDB(db *sql.DB, dialect dbcontext.Dialect) *OptionsBuilder {
	b.opts.Dialect = dialect
	b.opts.DB = db
	return b
}

// WithMaxOpenConns limits open connections.
func (b *OptionsBuilder) WithMaxOpenConns(n int) *OptionsBuilder {
	b.opts.MaxOpenConns = n
	return b
}

// WithMaxIdleConns limits idle connections.
func (b *OptionsBuilder) WithMaxIdleConns(n int) *OptionsBuilder {
	b.opts.MaxIdleConns = n
	return b
}

// WithConnMaxLifetime sets the maximum connection age.
func (b *OptionsBuilder) WithConnMaxLifetime(d time.Duration) *OptionsBuilder {
	b.opts.ConnMaxLifetime = d
	return b
}

// WithConnMaxIdleTime sets the maximum connection idle time.
func (b *OptionsBuilder) WithConnMaxIdleTime(d time.Duration) *OptionsBuilder {
	b.opts.ConnMaxIdleTime = d
	return b
}

// WithMigrations sets the file system and directory holding *.sql migrations.
func (b *OptionsBuilder) WithMigrations(fsys fs.FS, dir string) *OptionsBuilder {
	b.opts.Migrations = fsys
	if dir != "" {
		b.opts.MigrationsDir = dir
	}
	return b
}

// WithMigrationsTable sets the ledger table name.
func (b *OptionsBuilder) WithMigrationsTable(name string) *OptionsBuilder {
	b.opts.MigrationsTable = name
	return b
}

// WithMigrationStore replaces the SQL ledger with a custom store.
func (b *OptionsBuilder) WithMigrationStore(s store.MigrationStore) *OptionsBuilder {
	b.opts.MigrationStore = s
	return b
}

// Build validates the accumulated configuration and returns new Options.
// Each call returns independent Options with their own pool.
func (b *OptionsBuilder) Build() (*Options, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	opts := &Options{
		Dialect:         b.opts.Dialect,
		DSN:             b.opts.DSN,
		DB:              b.opts.DB,
		MaxOpenConns:    b.opts.MaxOpenConns,
		MaxIdleConns:    b.opts.MaxIdleConns,
		ConnMaxLifetime: b.opts.ConnMaxLifetime,
		ConnMaxIdleTime: b.opts.ConnMaxIdleTime,
		Migrations:      b.opts.Migrations,
		MigrationsDir:   b.opts.MigrationsDir,
		MigrationsTable: b.opts.MigrationsTable,
		MigrationStore:  b.opts.MigrationStore,
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return opts, nil
}
