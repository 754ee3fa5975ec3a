package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"storefront-cms-api/internal/model"
)

// SQLiteCollectionRepository implements CollectionRepository using SQLite.
type SQLiteCollectionRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteCollectionRepository creates a collection repository over an open
// content database (see OpenSQLite).
func NewSQLiteCollectionRepository(db *sql.DB) *SQLiteCollectionRepository {
	return &SQLiteCollectionRepository{db: db}
}

const collectionColumns = `id, title, description, shopify_id, handle, created_at, updated_at`

func scanCollection(row *sql.Row) (*model.Collection, error) {
	var c model.Collection
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ShopifyID, &c.Handle, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// FindByShopifyID looks up a collection by its Shopify id.
func (r *SQLiteCollectionRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*model.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + collectionColumns + ` FROM collections WHERE shopify_id = ?`
	c, err := scanCollection(r.db.QueryRowContext(ctx, query, shopifyID))
	if err != nil {
		return nil, fmt.Errorf("failed to find collection by shopify id: %w", err)
	}
	return c, nil
}

// Create inserts a collection, upserting on a conflicting shopify_id.
func (r *SQLiteCollectionRepository) Create(ctx context.Context, data model.CollectionData) (*model.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO collections (title, description, shopify_id, handle, created_at, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(shopify_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			handle = excluded.handle,
			updated_at = datetime('now')
		RETURNING ` + collectionColumns

	c, err := scanCollection(r.db.QueryRowContext(ctx, query,
		data.Title, data.Description, data.ShopifyID, data.Handle))
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return c, nil
}

// Update overwrites the mutable fields of the collection with the given internal id.
func (r *SQLiteCollectionRepository) Update(ctx context.Context, id int64, data model.CollectionData) (*model.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE collections SET
			title = ?,
			description = ?,
			handle = ?,
			updated_at = datetime('now')
		WHERE id = ?
		RETURNING ` + collectionColumns

	c, err := scanCollection(r.db.QueryRowContext(ctx, query,
		data.Title, data.Description, data.Handle, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("collection %d not found", id)
	}
	return c, nil
}

// Delete removes the collection with the given internal id.
func (r *SQLiteCollectionRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// GetByHandle looks up a collection by its storefront handle.
func (r *SQLiteCollectionRepository) GetByHandle(ctx context.Context, handle string) (*model.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + collectionColumns + ` FROM collections WHERE handle = ? LIMIT 1`
	c, err := scanCollection(r.db.QueryRowContext(ctx, query, handle))
	if err != nil {
		return nil, fmt.Errorf("failed to get collection by handle: %w", err)
	}
	return c, nil
}

// List returns a page of collections plus the total count.
func (r *SQLiteCollectionRepository) List(ctx context.Context, limit, offset int) ([]model.Collection, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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

// Ensure SQLiteCollectionRepository implements CollectionRepository
var _ CollectionRepository = (*SQLiteCollectionRepository)(nil)
