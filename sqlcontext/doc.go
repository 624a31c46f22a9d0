// Package sqlcontext provides the SQL persistence context that application contexts
// embed, the options it is configured with, and the migration engine behind Migrate.
//
// A context type embeds *DB and adds its own queries:
//
//	type CatalogContext struct {
//	    *sqlcontext.DB
//	}
//
//	func NewCatalogContext(opts *sqlcontext.Options) (*CatalogContext, error) {
//	    db, err := sqlcontext.New(opts)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &CatalogContext{DB: db}, nil
//	}
//
// Options own the *sql.DB pool. Contexts built from the same Options share it, so a
// short-lived context per unit of work does not open new pools.
//
// Migrations are plain *.sql files read from an fs.FS (typically embed.FS). Files are
// applied in lexical order, each at most once, and recorded in a ledger table. Only the
// section after "-- +migrate Up" runs; a "-- +migrate Down" section is ignored. The
// section is executed one statement at a time, and a statement whose object already
// exists is skipped without affecting the others.
package sqlcontext
