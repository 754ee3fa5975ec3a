package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"storefront-cms-api/internal/model"
)

// SQLiteArticleRepository implements ArticleRepository using SQLite.
type SQLiteArticleRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteArticleRepository creates an article repository over an open
// content database (see OpenSQLite).
func NewSQLiteArticleRepository(db *sql.DB) *SQLiteArticleRepository {
	return &SQLiteArticleRepository{db: db}
}

const articleColumns = `id, document_id, title, slug, body, published_at, created_at, updated_at`

func scanArticle(row *sql.Row) (*model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.DocumentID, &a.Title, &a.Slug, &a.Body, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetBySlug looks up an article by slug. Returns (nil, nil) when absent.
func (r *SQLiteArticleRepository) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = ?`
	a, err := scanArticle(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("failed to get article by slug: %w", err)
	}
	return a, nil
}

// Create inserts an article.
func (r *SQLiteArticleRepository) Create(ctx context.Context, article model.Article) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO articles (document_id, title, slug, body, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		RETURNING ` + articleColumns

	a, err := scanArticle(r.db.QueryRowContext(ctx, query,
		article.DocumentID, article.Title, article.Slug, article.Body, article.PublishedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	return a, nil
}

// Update overwrites the mutable fields of an article.
func (r *SQLiteArticleRepository) Update(ctx context.Context, id int64, article model.Article) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE articles SET
			title = ?,
			slug = ?,
			body = ?,
			published_at = ?,
			updated_at = datetime('now')
		WHERE id = ?
		RETURNING ` + articleColumns

	a, err := scanArticle(r.db.QueryRowContext(ctx, query,
		article.Title, article.Slug, article.Body, article.PublishedAt, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("article %d not found", id)
	}
	return a, nil
}

// Delete removes an article by internal id.
func (r *SQLiteArticleRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

// List returns a page of articles plus the total count.
func (r *SQLiteArticleRepository) List(ctx context.Context, limit, offset int) ([]model.Article, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.Title, &a.Slug, &a.Body, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, total, rows.Err()
}

// Ensure SQLiteArticleRepository implements ArticleRepository
var _ ArticleRepository = (*SQLiteArticleRepository)(nil)
