package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"storefront-cms-api/internal/model"
)

// SQLitePageRepository implements PageRepository using SQLite.
type SQLitePageRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLitePageRepository creates a page repository over an open content
// database (see OpenSQLite).
func NewSQLitePageRepository(db *sql.DB) *SQLitePageRepository {
	return &SQLitePageRepository{db: db}
}

const pageColumns = `id, document_id, title, slug, body, created_at, updated_at`

func scanPage(row *sql.Row) (*model.Page, error) {
	var p model.Page
	err := row.Scan(&p.ID, &p.DocumentID, &p.Title, &p.Slug, &p.Body, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetBySlug looks up a page by slug. Returns (nil, nil) when absent.
func (r *SQLitePageRepository) GetBySlug(ctx context.Context, slug string) (*model.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + pageColumns + ` FROM pages WHERE slug = ?`
	p, err := scanPage(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("failed to get page by slug: %w", err)
	}
	return p, nil
}

// Create inserts a page.
func (r *SQLitePageRepository) Create(ctx context.Context, page model.Page) (*model.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO pages (document_id, title, slug, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'), datetime('now'))
		RETURNING ` + pageColumns

	p, err := scanPage(r.db.QueryRowContext(ctx, query,
		page.DocumentID, page.Title, page.Slug, page.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return p, nil
}

// Update overwrites the mutable fields of a page.
func (r *SQLitePageRepository) Update(ctx context.Context, id int64, page model.Page) (*model.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE pages SET
			title = ?,
			slug = ?,
			body = ?,
			updated_at = datetime('now')
		WHERE id = ?
		RETURNING ` + pageColumns

	p, err := scanPage(r.db.QueryRowContext(ctx, query,
		page.Title, page.Slug, page.Body, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("page %d not found", id)
	}
	return p, nil
}

// Delete removes a page by internal id.
func (r *SQLitePageRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}

// List returns a page of pages plus the total count.
func (r *SQLitePageRepository) List(ctx context.Context, limit, offset int) ([]model.Page, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pages: %w", err)
	}

	query := `SELECT ` + pageColumns + ` FROM pages ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	pages := []model.Page{}
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.Title, &p.Slug, &p.Body, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, total, rows.Err()
}

// Ensure SQLitePageRepository implements PageRepository
var _ PageRepository = (*SQLitePageRepository)(nil)
