// Package migrations generates SQL migration files for persistence contexts.
// It writes timestamped "-- +migrate Up/Down" skeletons for new schema changes and
// the migration ledger table DDL for PostgreSQL, MySQL/MariaDB, and SQLite databases
// that are provisioned ahead of the application.
package migrations
