package store

import (
	"context"
	"sync"

	"github.com/getpup/pupsourcing-dbcontext"
)

// MockMigrationStore is a configurable mock implementation of MigrationStore
// for use in tests. It allows setting up expected return values, tracking method
// calls, and injecting errors for testing error paths.
type MockMigrationStore struct {
	mu sync.RWMutex

	// EnsureSchemaFunc is called by EnsureSchema if set.
	EnsureSchemaFunc func(ctx context.Context) error

	// AppliedMigrationsFunc is called by AppliedMigrations if set.
	AppliedMigrationsFunc func(ctx context.Context) ([]dbcontext.AppliedMigration, error)

	// IsAppliedFunc is called by IsApplied if set.
	IsAppliedFunc func(ctx context.Context, name string) (bool, error)

	// RecordMigrationFunc is called by RecordMigration if set.
	RecordMigrationFunc func(ctx context.Context, exec Execer, name string) error

	// Call tracking
	EnsureSchemaCalls      int
	AppliedMigrationsCalls int
	IsAppliedCalls         []IsAppliedCall
	RecordMigrationCalls   []RecordMigrationCall
}

// Call tracking structs
type IsAppliedCall struct {
	Name string
}

type RecordMigrationCall struct {
	Name string
}

// Compile-time check that MockMigrationStore implements MigrationStore.
var _ MigrationStore = (*MockMigrationStore)(nil)

// NewMockMigrationStore creates a new mock migration store.
func NewMockMigrationStore() *MockMigrationStore {
	return &MockMigrationStore{}
}

// EnsureSchema implements MigrationStore.
func (m *MockMigrationStore) EnsureSchema(ctx context.Context) error {
	m.mu.Lock()
	m.EnsureSchemaCalls++
	m.mu.Unlock()

	if m.EnsureSchemaFunc != nil {
		return m.EnsureSchemaFunc(ctx)
	}

	return nil
}

// AppliedMigrations implements MigrationStore.
func (m *MockMigrationStore) AppliedMigrations(ctx context.Context) ([]dbcontext.AppliedMigration, error) {
	m.mu.Lock()
	m.AppliedMigrationsCalls++
	m.mu.Unlock()

	if m.AppliedMigrationsFunc != nil {
		return m.AppliedMigrationsFunc(ctx)
	}

	return []dbcontext.AppliedMigration{}, nil
}

// IsApplied implements MigrationStore.
func (m *MockMigrationStore) IsApplied(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	m.IsAppliedCalls = append(m.IsAppliedCalls, IsAppliedCall{Name: name})
	m.mu.Unlock()

	if m.IsAppliedFunc != nil {
		return m.IsAppliedFunc(ctx, name)
	}

	return false, nil
}

// RecordMigration implements MigrationStore.
func (m *MockMigrationStore) RecordMigration(ctx context.Context, exec Execer, name string) error {
	m.mu.Lock()
	m.RecordMigrationCalls = append(m.RecordMigrationCalls, RecordMigrationCall{Name: name})
	m.mu.Unlock()

	if m.RecordMigrationFunc != nil {
		return m.RecordMigrationFunc(ctx, exec, name)
	}

	return nil
}

// RecordedNames returns the names passed to RecordMigration, in call order.
func (m *MockMigrationStore) RecordedNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.RecordMigrationCalls))
	for i, call := range m.RecordMigrationCalls {
		names[i] = call.Name
	}
	return names
}

// Reset clears all call tracking data.
func (m *MockMigrationStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EnsureSchemaCalls = 0
	m.AppliedMigrationsCalls = 0
	m.IsAppliedCalls = nil
	m.RecordMigrationCalls = nil
}
