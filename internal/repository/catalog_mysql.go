package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-cms-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// OpenMySQL opens the MySQL content database and verifies connectivity.
// The schema is expected to be provisioned by migrations.
func OpenMySQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	return db, nil
}

// MySQLProductRepository implements ProductRepository using MySQL.
type MySQLProductRepository struct {
	db *sql.DB
}

// NewMySQLProductRepository creates a product repository over an open MySQL handle.
func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

// FindByShopifyID looks up a product by its Shopify id.
func (r *MySQLProductRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE shopify_id = ? LIMIT 1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, shopifyID))
	if err != nil {
		return nil, fmt.Errorf("failed to find product by shopify id: %w", err)
	}
	return p, nil
}

// Create inserts a product, upserting on a duplicate shopify_id.
func (r *MySQLProductRepository) Create(ctx context.Context, data model.ProductData) (*model.Product, error) {
	query := `
		INSERT INTO products (title, description, price, shopify_id, handle, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			title = VALUES(title),
			description = VALUES(description),
			price = VALUES(price),
			handle = VALUES(handle),
			updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query,
		data.Title, data.Description, data.Price, data.ShopifyID, data.Handle); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return r.FindByShopifyID(ctx, data.ShopifyID)
}

// Update overwrites the mutable fields of the product with the given internal id.
func (r *MySQLProductRepository) Update(ctx context.Context, id int64, data model.ProductData) (*model.Product, error) {
	query := `
		UPDATE products SET
			title = ?,
			description = ?,
			price = ?,
			handle = ?,
			updated_at = NOW()
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		data.Title, data.Description, data.Price, data.Handle, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-change
		// update, so confirm existence before reporting not found.
		if p, ferr := r.findByID(ctx, id); ferr == nil && p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("product %d not found", id)
	}
	return r.findByID(ctx, id)
}

func (r *MySQLProductRepository) findByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// Delete removes the product with the given internal id.
func (r *MySQLProductRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// GetByHandle looks up a product by its storefront handle.
func (r *MySQLProductRepository) GetByHandle(ctx context.Context, handle string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE handle = ? LIMIT 1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, handle))
	if err != nil {
		return nil, fmt.Errorf("failed to get product by handle: %w", err)
	}
	return p, nil
}

// List returns a page of products plus the total count.
func (r *MySQLProductRepository) List(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
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

// MySQLCollectionRepository implements CollectionRepository using MySQL.
type MySQLCollectionRepository struct {
	db *sql.DB
}

// NewMySQLCollectionRepository creates a collection repository over an open MySQL handle.
func NewMySQLCollectionRepository(db *sql.DB) *MySQLCollectionRepository {
	return &MySQLCollectionRepository{db: db}
}

// FindByShopifyID looks up a collection by its Shopify id.
func (r *MySQLCollectionRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*model.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE shopify_id = ? LIMIT 1`
	c, err := scanCollection(r.db.QueryRowContext(ctx, query, shopifyID))
	if err != nil {
		return nil, fmt.Errorf("failed to find collection by shopify id: %w", err)
	}
	return c, nil
}

// Create inserts a collection, upserting on a duplicate shopify_id.
func (r *MySQLCollectionRepository) Create(ctx context.Context, data model.CollectionData) (*model.Collection, error) {
	query := `
		INSERT INTO collections (title, description, shopify_id, handle, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			title = VALUES(title),
			description = VALUES(description),
			handle = VALUES(handle),
			updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query,
		data.Title, data.Description, data.ShopifyID, data.Handle); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return r.FindByShopifyID(ctx, data.ShopifyID)
}

// Update overwrites the mutable fields of the collection with the given internal id.
func (r *MySQLCollectionRepository) Update(ctx context.Context, id int64, data model.CollectionData) (*model.Collection, error) {
	query := `
		UPDATE collections SET
			title = ?,
			description = ?,
			handle = ?,
			updated_at = NOW()
		WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query,
		data.Title, data.Description, data.Handle, id); err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}

	query = `SELECT ` + collectionColumns + ` FROM collections WHERE id = ?`
	c, err := scanCollection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("collection %d not found", id)
	}
	return c, nil
}

// Delete removes the collection with the given internal id.
func (r *MySQLCollectionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// GetByHandle looks up a collection by its storefront handle.
func (r *MySQLCollectionRepository) GetByHandle(ctx context.Context, handle string) (*model.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE handle = ? LIMIT 1`
	c, err := scanCollection(r.db.QueryRowContext(ctx, query, handle))
	if err != nil {
		return nil, fmt.Errorf("failed to get collection by handle: %w", err)
	}
	return c, nil
}

// List returns a page of collections plus the total count.
func (r *MySQLCollectionRepository) List(ctx context.Context, limit, offset int) ([]model.Collection, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count collections: %w", err)
	}

	query := `SELECT ` + collectionColumns + ` FROM collections ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	collections := []model.Collection{}
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.ShopifyID, &c.Handle, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, total, rows.Err()
}

// Ensure compile-time conformity
var (
	_ ProductRepository    = (*MySQLProductRepository)(nil)
	_ CollectionRepository = (*MySQLCollectionRepository)(nil)
)
