// Command migrate-gen generates SQL migration files for persistence contexts.
//
// Usage:
//
//	go run github.com/getpup/pupsourcing-dbcontext/cmd/migrate-gen -name add_products -output migrations
//
// Or with go generate:
//
//	//go:generate go run github.com/getpup/pupsourcing-dbcontext/cmd/migrate-gen -name add_products -output migrations
//
// Generate the migration ledger table for databases provisioned ahead of the application:
//
//	go run github.com/getpup/pupsourcing-dbcontext/cmd/migrate-gen -ledger -adapter postgres -output migrations
//	go run github.com/getpup/pupsourcing-dbcontext/cmd/migrate-gen -ledger -adapter mysql -output migrations
//	go run github.com/getpup/pupsourcing-dbcontext/cmd/migrate-gen -ledger -adapter sqlite3 -output migrations
//
// Customize the ledger table name:
//
//	go run github.com/getpup/pupsourcing-dbcontext/cmd/migrate-gen -ledger -ledger-table catalog_migrations
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/pkg/migrations"
	"github.com/getpup/pupsourcing-dbcontext/pkg/version"
)

func main() {
	var (
		ledger         = flag.Bool("ledger", false, "Generate the migration ledger table instead of an empty migration")
		adapter        = flag.String("adapter", "postgres", "Database adapter for -ledger: postgres, mysql, or sqlite3")
		outputFolder   = flag.String("output", "migrations", "Output folder for migration file")
		outputFilename = flag.String("filename", "", "Output filename (default: timestamp-based)")
		name           = flag.String("name", "init", "Migration name")
		ledgerTable    = flag.String("ledger-table", "schema_migrations", "Name of the migration ledger table")
		showVersion    = flag.Bool("version", false, "Print version and exit")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("migrate-gen %s\n", version.Version)
		return
	}

	config := migrations.DefaultConfig()
	config.OutputFolder = *outputFolder
	config.OutputFilename = *outputFilename
	config.Name = *name
	config.LedgerTable = *ledgerTable

	var (
		path string
		err  error
	)
	if *ledger {
		if *adapter == "sqlite" {
			*adapter = string(dbcontext.DialectSQLite)
		}
		path, err = migrations.Generate(dbcontext.Dialect(*adapter), &config)
	} else {
		path, err = migrations.GenerateMigration(&config)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated migration: %s\n", path)
}
