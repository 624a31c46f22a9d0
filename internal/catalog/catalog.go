// Package catalog is the demo persistence context served by dbcontext-host.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/sqlcontext"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsDir is the directory of Migrations holding the schema files.
const MigrationsDir = "migrations"

// Migrations returns the embedded schema migrations.
func Migrations() embed.FS {
	return migrationsFS
}

// ErrProductNotFound is returned when no product has the requested SKU.
var ErrProductNotFound = errors.New("product not found")

// Product is a catalog entry.
type Product struct {
	SKU        string
	Name       string
	PriceCents int64
	Stock      int
}

// Reader reads products.
type Reader interface {
	dbcontext.Context
	Product(ctx context.Context, sku string) (Product, error)
	Products(ctx context.Context) ([]Product, error)
}

// Writer changes products.
type Writer interface {
	dbcontext.Context
	SaveProduct(ctx context.Context, p Product) error
	AdjustStock(ctx context.Context, sku string, delta int) error
}

// Context is the catalog persistence context.
type Context struct {
	*sqlcontext.DB
}

// Compile-time checks that Context serves its capabilities.
var (
	_ Reader                = (*Context)(nil)
	_ Writer                = (*Context)(nil)
	_ dbcontext.Connectable = (*Context)(nil)
)

// New creates a catalog context.
func New(opts *sqlcontext.Options) (*Context, error) {
	db, err := sqlcontext.New(opts)
	if err != nil {
		return nil, err
	}
	return &Context{DB: db}, nil
}

// Configure targets the catalog schema at dialect and dsn.
func Configure(dialect dbcontext.Dialect, dsn string) func(*sqlcontext.OptionsBuilder) {
	return func(b *sqlcontext.OptionsBuilder) {
		switch dialect {
		case dbcontext.DialectPostgres:
			b.UsePostgres(dsn)
		case dbcontext.DialectMySQL:
			b.UseMySQL(dsn)
		default:
			b.UseSQLite(dsn)
		}
		b.WithMigrations(migrationsFS, MigrationsDir)
	}
}

// Product returns the product with the given SKU.
func (c *Context) Product(ctx context.Context, sku string) (Product, error) {
	conn, err := c.Conn(ctx)
	if err != nil {
		return Product{}, err
	}

	var p Product
	err = conn.QueryRowContext(ctx,
		c.Rebind("SELECT sku, name, price_cents, stock FROM products WHERE sku = ?"), sku,
	).Scan(&p.SKU, &p.Name, &p.PriceCents, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, sku)
	}
	if err != nil {
		return Product{}, fmt.Errorf("failed to load product %s: %w", sku, err)
	}
	return p, nil
}

// Products returns every product ordered by SKU.
func (c *Context) Products(ctx context.Context) ([]Product, error) {
	conn, err := c.Conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, "SELECT sku, name, price_cents, stock FROM products ORDER BY sku")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.PriceCents, &p.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SaveProduct inserts a product, or updates its name and price if the SKU exists.
func (c *Context) SaveProduct(ctx context.Context, p Product) error {
	conn, err := c.Conn(ctx)
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx, c.Rebind("SELECT COUNT(*) FROM products WHERE sku = ?"), p.SKU).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up product %s: %w", p.SKU, err)
	}

	if exists > 0 {
		_, err = tx.ExecContext(ctx, c.Rebind("UPDATE products SET name = ?, price_cents = ? WHERE sku = ?"), p.Name, p.PriceCents, p.SKU)
	} else {
		_, err = tx.ExecContext(ctx,
			c.Rebind("INSERT INTO products (sku, name, price_cents, stock) VALUES (?, ?, ?, ?)"),
			p.SKU, p.Name, p.PriceCents, p.Stock,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.SKU, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AdjustStock adds delta to a product's stock.
func (c *Context) AdjustStock(ctx context.Context, sku string, delta int) error {
	conn, err := c.Conn(ctx)
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx, c.Rebind("UPDATE products SET stock = stock + ? WHERE sku = ?"), delta, sku)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for %s: %w", sku, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to adjust stock for %s: %w", sku, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, sku)
	}
	return nil
}
