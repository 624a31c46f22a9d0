package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/container"
	"github.com/getpup/pupsourcing-dbcontext/persistence"
	"github.com/getpup/pupsourcing-dbcontext/sqlcontext"
	"github.com/getpup/pupsourcing-dbcontext/store/memory"
)

func catalogProvider(t *testing.T) *container.Provider {
	t.Helper()

	services := container.NewCollection()
	require.NoError(t, persistence.AddContext(services, New,
		Configure(dbcontext.DialectSQLite, filepath.Join(t.TempDir(), "catalog.db")),
		persistence.As[Reader](),
		persistence.As[Writer](),
	))

	provider := services.Build()
	t.Cleanup(func() {
		_ = provider.Close()
	})
	require.NoError(t, persistence.MigrateContexts(context.Background(), provider))
	return provider
}

func TestMigrations_Embedded(t *testing.T) {
	ctx := context.Background()
	ledger := memory.New()
	require.NoError(t, ledger.EnsureSchema(ctx))

	pending, err := sqlcontext.PendingMigrations(ctx, ledger, Migrations(), MigrationsDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"migrations/001_products.sql", "migrations/002_stock.sql"}, pending)
}

func TestContext_ProductLifecycle(t *testing.T) {
	provider := catalogProvider(t)
	ctx := context.Background()

	writer, err := container.Resolve[Writer](provider)
	require.NoError(t, err)
	reader, err := container.Resolve[Reader](provider)
	require.NoError(t, err)

	require.NoError(t, writer.SaveProduct(ctx, Product{SKU: "LAMP-1", Name: "Desk lamp", PriceCents: 2999, Stock: 3}))
	require.NoError(t, writer.SaveProduct(ctx, Product{SKU: "CHAIR-1", Name: "Chair", PriceCents: 8900}))
	require.NoError(t, writer.SaveProduct(ctx, Product{SKU: "LAMP-1", Name: "Floor lamp", PriceCents: 4999}))
	require.NoError(t, writer.AdjustStock(ctx, "LAMP-1", 2))

	p, err := reader.Product(ctx, "LAMP-1")
	require.NoError(t, err)
	assert.Equal(t, Product{SKU: "LAMP-1", Name: "Floor lamp", PriceCents: 4999, Stock: 5}, p)

	products, err := reader.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "CHAIR-1", products[0].SKU)
}

func TestContext_ProductNotFound(t *testing.T) {
	provider := catalogProvider(t)
	ctx := context.Background()

	c, err := container.Resolve[*Context](provider)
	require.NoError(t, err)

	_, err = c.Product(ctx, "MISSING")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, c.AdjustStock(ctx, "MISSING", 1), ErrProductNotFound)
}

func TestContext_MigratedOnce(t *testing.T) {
	provider := catalogProvider(t)
	ctx := context.Background()

	require.NoError(t, persistence.MigrateContexts(ctx, provider))

	c, err := container.Resolve[*Context](provider)
	require.NoError(t, err)
	applied, err := c.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "migrations/001_products.sql", applied[0].Name)
	assert.Equal(t, "migrations/002_stock.sql", applied[1].Name)
}
