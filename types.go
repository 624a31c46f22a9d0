package dbcontext

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Lifetime controls how long a resolved service instance is reused.
type Lifetime string

const (
	// LifetimeTransient creates a new instance on every resolution.
	LifetimeTransient Lifetime = "transient"

	// LifetimeScoped shares one instance per container scope.
	LifetimeScoped Lifetime = "scoped"

	// LifetimeSingleton shares one instance for the lifetime of the provider.
	LifetimeSingleton Lifetime = "singleton"
)

// IsValid reports whether l is one of the known lifetimes.
func (l Lifetime) IsValid() bool {
	switch l {
	case LifetimeTransient, LifetimeScoped, LifetimeSingleton:
		return true
	}
	return false
}

// Dialect identifies the SQL database flavour a context talks to.
type Dialect string

const (
	// DialectPostgres is PostgreSQL, served by github.com/lib/pq.
	DialectPostgres Dialect = "postgres"

	// DialectMySQL is MySQL/MariaDB, served by github.com/go-sql-driver/mysql.
	DialectMySQL Dialect = "mysql"

	// DialectSQLite is SQLite, served by github.com/mattn/go-sqlite3.
	DialectSQLite Dialect = "sqlite3"
)

// IsValid reports whether d is one of the supported dialects.
func (d Dialect) IsValid() bool {
	switch d {
	case DialectPostgres, DialectMySQL, DialectSQLite:
		return true
	}
	return false
}

// DriverName returns the database/sql driver name registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
// PostgreSQL uses $1, $2, ...; MySQL and SQLite keep '?'.
// Question marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var (
		b       strings.Builder
		n       int
		inQuote bool
	)
	b.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// AppliedMigration records a migration file that has been executed against a schema.
type AppliedMigration struct {
	// Name is the migration key, usually the file path relative to the migrations root.
	Name string

	// AppliedAt is when the migration was recorded.
	AppliedAt time.Time
}

// TypeName returns the simple name of t, looking through pointers.
// Unnamed types fall back to their string form.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
