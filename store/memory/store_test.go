package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/getpup/pupsourcing-dbcontext/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RequiresEnsureSchema(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.AppliedMigrations(ctx)
	assert.ErrorIs(t, err, store.ErrLedgerMissing)

	_, err = s.IsApplied(ctx, "001_init.sql")
	assert.ErrorIs(t, err, store.ErrLedgerMissing)

	err = s.RecordMigration(ctx, nil, "001_init.sql")
	assert.ErrorIs(t, err, store.ErrLedgerMissing)
}

func TestStore_EnsureSchemaIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.RecordMigration(ctx, nil, "001_init.sql"))
	require.NoError(t, s.EnsureSchema(ctx))

	applied, err := s.IsApplied(ctx, "001_init.sql")
	require.NoError(t, err)
	assert.True(t, applied, "EnsureSchema must not wipe the ledger")
}

func TestStore_RecordMigration(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	beforeRecord := time.Now()
	require.NoError(t, s.RecordMigration(ctx, nil, "002_orders.sql"))
	require.NoError(t, s.RecordMigration(ctx, nil, "001_init.sql"))
	afterRecord := time.Now()

	applied, err := s.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "001_init.sql", applied[0].Name, "ordered by name")
	assert.Equal(t, "002_orders.sql", applied[1].Name)
	for _, m := range applied {
		assert.True(t, m.AppliedAt.After(beforeRecord) || m.AppliedAt.Equal(beforeRecord))
		assert.True(t, m.AppliedAt.Before(afterRecord) || m.AppliedAt.Equal(afterRecord))
	}

	ok, err := s.IsApplied(ctx, "003_missing.sql")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_RecordTwiceKeepsFirstTimestamp(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }
	require.NoError(t, s.RecordMigration(ctx, nil, "001_init.sql"))

	s.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, s.RecordMigration(ctx, nil, "001_init.sql"))

	applied, err := s.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, first, applied[0].AppliedAt)
}

func TestStore_ConcurrentRecords(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.RecordMigration(ctx, nil, fmt.Sprintf("%03d.sql", i%10)))
		}(i)
	}
	wg.Wait()

	applied, err := s.AppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 10)
}
