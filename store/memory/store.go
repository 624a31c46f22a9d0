package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/store"
)

// Store is an in-memory implementation of MigrationStore for testing.
// It provides thread-safe access to the ledger using a sync.RWMutex.
// The Execer passed to RecordMigration is ignored.
type Store struct {
	mu      sync.RWMutex
	ready   bool
	applied map[string]time.Time // migration name -> applied at
	now     func() time.Time
}

// Compile-time check that Store implements MigrationStore.
var _ store.MigrationStore = (*Store)(nil)

// New creates a new in-memory store with an initialized ledger map.
func New() *Store {
	return &Store{
		applied: make(map[string]time.Time),
		now:     time.Now,
	}
}

// EnsureSchema marks the ledger as created. Calling it again is a no-op.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = true
	return nil
}

// AppliedMigrations returns every recorded migration ordered by name.
// Returns store.ErrLedgerMissing if EnsureSchema has not been called.
func (s *Store) AppliedMigrations(ctx context.Context) ([]dbcontext.AppliedMigration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return nil, store.ErrLedgerMissing
	}

	result := make([]dbcontext.AppliedMigration, 0, len(s.applied))
	for name, at := range s.applied {
		result = append(result, dbcontext.AppliedMigration{Name: name, AppliedAt: at})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// IsApplied reports whether the named migration has been recorded.
// Returns store.ErrLedgerMissing if EnsureSchema has not been called.
func (s *Store) IsApplied(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return false, store.ErrLedgerMissing
	}

	_, ok := s.applied[name]
	return ok, nil
}

// RecordMigration records name as applied. Recording twice keeps the first timestamp.
// Returns store.ErrLedgerMissing if EnsureSchema has not been called.
func (s *Store) RecordMigration(ctx context.Context, _ store.Execer, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return store.ErrLedgerMissing
	}

	if _, ok := s.applied[name]; !ok {
		s.applied[name] = s.now()
	}
	return nil
}
