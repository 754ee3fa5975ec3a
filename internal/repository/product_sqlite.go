package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"storefront-cms-api/internal/model"
)

// SQLiteProductRepository implements ProductRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteProductRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteProductRepository creates a product repository over an open
// content database (see OpenSQLite).
func NewSQLiteProductRepository(db *sql.DB) *SQLiteProductRepository {
	return &SQLiteProductRepository{db: db}
}

const productColumns = `id, title, description, price, shopify_id, handle, created_at, updated_at`

func scanProduct(row *sql.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.ShopifyID, &p.Handle, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByShopifyID looks up a product by its Shopify id.
func (r *SQLiteProductRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + productColumns + ` FROM products WHERE shopify_id = ?`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, shopifyID))
	if err != nil {
		return nil, fmt.Errorf("failed to find product by shopify id: %w", err)
	}
	return p, nil
}

// Create inserts a product. A conflicting shopify_id upgrades to an update,
// so duplicate webhook deliveries can never produce a second row.
func (r *SQLiteProductRepository) Create(ctx context.Context, data model.ProductData) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO products (title, description, price, shopify_id, handle, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(shopify_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			price = excluded.price,
			handle = excluded.handle,
			updated_at = datetime('now')
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		data.Title, data.Description, data.Price, data.ShopifyID, data.Handle))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// Update overwrites the mutable fields of the product with the given internal id.
func (r *SQLiteProductRepository) Update(ctx context.Context, id int64, data model.ProductData) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE products SET
			title = ?,
			description = ?,
			price = ?,
			handle = ?,
			updated_at = datetime('now')
		WHERE id = ?
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		data.Title, data.Description, data.Price, data.Handle, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("product %d not found", id)
	}
	return p, nil
}

// Delete removes the product with the given internal id.
func (r *SQLiteProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// GetByHandle looks up a product by its storefront handle.
func (r *SQLiteProductRepository) GetByHandle(ctx context.Context, handle string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + productColumns + ` FROM products WHERE handle = ? LIMIT 1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, handle))
	if err != nil {
		return nil, fmt.Errorf("failed to get product by handle: %w", err)
	}
	return p, nil
}

// List returns a page of products plus the total count.
func (r *SQLiteProductRepository) List(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.ShopifyID, &p.Handle, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// Ensure SQLiteProductRepository implements ProductRepository
var _ ProductRepository = (*SQLiteProductRepository)(nil)
