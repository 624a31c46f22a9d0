package sqlcontext

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/getpup/pupsourcing-dbcontext/store"
	"github.com/lib/pq"
)

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"

	statementSavepoint = "dbcontext_migration_statement"
)

// ApplyMigrations executes the *.sql files in dir of fsys at most once per file,
// in lexical order, and returns the names it applied.
//
// Each file runs in its own transaction together with its ledger record, one
// statement at a time. A statement failing because its object already exists is
// skipped and the rest of the file still runs, so hand-applied schemas can be
// adopted. Any other error rolls the file back and aborts; files after it are not
// attempted.
func ApplyMigrations(ctx context.Context, db *sql.DB, ledger store.MigrationStore, fsys fs.FS, dir string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("sql db is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("migration store is required")
	}

	if err := ledger.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	files, err := migrationFiles(fsys, dir)
	if err != nil {
		return nil, err
	}

	applied := []string{}
	for _, file := range files {
		done, err := ledger.IsApplied(ctx, file.key)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", file.key, err)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(fsys, file.path)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file.key, err)
		}

		if err := applyOne(ctx, db, ledger, file.key, ExtractUpMigration(string(content))); err != nil {
			return applied, err
		}
		applied = append(applied, file.key)
	}

	return applied, nil
}

// PendingMigrations returns the names of migration files the ledger has not recorded.
func PendingMigrations(ctx context.Context, ledger store.MigrationStore, fsys fs.FS, dir string) ([]string, error) {
	files, err := migrationFiles(fsys, dir)
	if err != nil {
		return nil, err
	}

	pending := []string{}
	for _, file := range files {
		done, err := ledger.IsApplied(ctx, file.key)
		if err != nil {
			return nil, fmt.Errorf("check migration %s: %w", file.key, err)
		}
		if !done {
			pending = append(pending, file.key)
		}
	}
	return pending, nil
}

func applyOne(ctx context.Context, db *sql.DB, ledger store.MigrationStore, name, upSQL string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction %s: %w", name, err)
	}

	savepoints := usesSavepoints(db)
	for i, stmt := range SplitStatements(upSQL) {
		if err := execStatement(ctx, tx, stmt, savepoints); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s (statement %d): %w", name, i+1, err)
		}
	}

	if err := ledger.RecordMigration(ctx, tx, name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

// execStatement runs one statement and tolerates already-exists errors. With savepoints
// the failed statement is rolled back alone so the transaction stays usable.
func execStatement(ctx context.Context, tx *sql.Tx, stmt string, savepoints bool) error {
	if savepoints {
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+statementSavepoint); err != nil {
			return err
		}
	}

	_, err := tx.ExecContext(ctx, stmt)
	switch {
	case err == nil:
		if savepoints {
			_, err = tx.ExecContext(ctx, "RELEASE SAVEPOINT "+statementSavepoint)
		}
		return err
	case !IsAlreadyExistsError(err):
		return err
	case savepoints:
		_, err = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+statementSavepoint)
		return err
	default:
		return nil
	}
}

// usesSavepoints reports whether a failed statement aborts the whole transaction,
// which is the case on PostgreSQL.
func usesSavepoints(db *sql.DB) bool {
	_, ok := db.Driver().(*pq.Driver)
	return ok
}

type migrationFile struct {
	key  string // ledger name, relative to the migrations root
	path string // path inside the fs.FS
}

func migrationFiles(fsys fs.FS, dir string) ([]migrationFile, error) {
	if fsys == nil {
		return nil, nil
	}

	root := strings.TrimSpace(dir)
	if root == "" {
		root = "."
	}
	keyRoot := root
	if keyRoot == "." {
		keyRoot = ""
	}

	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		key := entry.Name()
		if keyRoot != "" {
			key = path.Join(keyRoot, entry.Name())
		}
		files = append(files, migrationFile{key: key, path: path.Join(root, entry.Name())})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].key < files[j].key
	})

	return files, nil
}

// ExtractUpMigration returns the SQL in the "-- +migrate Up" section.
// Content without markers is returned whole.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		if downIdx := strings.Index(content, downMarker); downIdx != -1 {
			return content[:downIdx]
		}
		return content
	}
	rest := content[upIdx+len(upMarker):]
	if downIdx := strings.Index(rest, downMarker); downIdx != -1 {
		return rest[:downIdx]
	}
	return rest
}

// ExtractDownMigration returns the SQL in the "-- +migrate Down" section, or "" if absent.
func ExtractDownMigration(content string) string {
	downIdx := strings.Index(content, downMarker)
	if downIdx == -1 {
		return ""
	}
	rest := content[downIdx+len(downMarker):]
	if upIdx := strings.Index(rest, upMarker); upIdx != -1 {
		return rest[:upIdx]
	}
	return rest
}

// IsAlreadyExistsError reports whether err indicates idempotent DDL success
// on any supported dialect.
func IsAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") ||
		strings.Contains(value, "duplicate column name") ||
		strings.Contains(value, "duplicate key name")
}
