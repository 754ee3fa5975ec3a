package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-cms-api/internal/cache"
	"storefront-cms-api/internal/model"
	"storefront-cms-api/internal/repository"
	"storefront-cms-api/pkg/uid"
)

// ContentService serves the storefront-facing content API: catalog reads
// (with read-through caching) and article/page CRUD.
type ContentService struct {
	products    repository.ProductRepository
	collections repository.CollectionRepository
	articles    repository.ArticleRepository
	pages       repository.PageRepository
	cache       cache.Cache
	cacheTTL    time.Duration
}

// NewContentService creates a content service. cache may be nil to disable
// read-through caching.
func NewContentService(
	products repository.ProductRepository,
	collections repository.CollectionRepository,
	articles repository.ArticleRepository,
	pages repository.PageRepository,
	c cache.Cache,
	cacheTTL time.Duration,
) *ContentService {
	return &ContentService{
		products:    products,
		collections: collections,
		articles:    articles,
		pages:       pages,
		cache:       c,
		cacheTTL:    cacheTTL,
	}
}

// ListProducts returns a page of products plus the total count.
func (s *ContentService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	return s.products.List(ctx, limit, offset)
}

// GetProductByHandle looks up a product by handle through the cache.
// Returns (nil, nil) when no product matches.
func (s *ContentService) GetProductByHandle(ctx context.Context, handle string) (*model.Product, error) {
	if s.cache == nil {
		return s.products.GetByHandle(ctx, handle)
	}

	data, err := s.cache.GetOrSet(ctx, cache.ProductHandleKey(handle), s.cacheTTL, func() ([]byte, error) {
		p, err := s.products.GetByHandle(ctx, handle)
		if err != nil {
			return nil, err
		}
		return json.Marshal(p)
	})
	if err != nil {
		return nil, err
	}

	var p *model.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode cached product: %w", err)
	}
	return p, nil
}

// ListCollections returns a page of collections plus the total count.
func (s *ContentService) ListCollections(ctx context.Context, limit, offset int) ([]model.Collection, int64, error) {
	return s.collections.List(ctx, limit, offset)
}

// GetCollectionByHandle looks up a collection by handle through the cache.
// Returns (nil, nil) when no collection matches.
func (s *ContentService) GetCollectionByHandle(ctx context.Context, handle string) (*model.Collection, error) {
	if s.cache == nil {
		return s.collections.GetByHandle(ctx, handle)
	}

	data, err := s.cache.GetOrSet(ctx, cache.CollectionHandleKey(handle), s.cacheTTL, func() ([]byte, error) {
		c, err := s.collections.GetByHandle(ctx, handle)
		if err != nil {
			return nil, err
		}
		return json.Marshal(c)
	})
	if err != nil {
		return nil, err
	}

	var c *model.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cached collection: %w", err)
	}
	return c, nil
}

// ListArticles returns a page of articles plus the total count.
func (s *ContentService) ListArticles(ctx context.Context, limit, offset int) ([]model.Article, int64, error) {
	return s.articles.List(ctx, limit, offset)
}

// GetArticleBySlug looks up an article by slug. Returns (nil, nil) when absent.
func (s *ContentService) GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	return s.articles.GetBySlug(ctx, slug)
}

// CreateArticle inserts a new article, assigning its document id.
func (s *ContentService) CreateArticle(ctx context.Context, article model.Article) (*model.Article, error) {
	article.DocumentID = uid.New()
	return s.articles.Create(ctx, article)
}

// UpdateArticle overwrites an existing article's fields.
func (s *ContentService) UpdateArticle(ctx context.Context, id int64, article model.Article) (*model.Article, error) {
	return s.articles.Update(ctx, id, article)
}

// DeleteArticle removes an article by internal id.
func (s *ContentService) DeleteArticle(ctx context.Context, id int64) error {
	return s.articles.Delete(ctx, id)
}

// ListPages returns a page of pages plus the total count.
func (s *ContentService) ListPages(ctx context.Context, limit, offset int) ([]model.Page, int64, error) {
	return s.pages.List(ctx, limit, offset)
}

// GetPageBySlug looks up a page by slug. Returns (nil, nil) when absent.
func (s *ContentService) GetPageBySlug(ctx context.Context, slug string) (*model.Page, error) {
	return s.pages.GetBySlug(ctx, slug)
}

// CreatePage inserts a new page, assigning its document id.
func (s *ContentService) CreatePage(ctx context.Context, page model.Page) (*model.Page, error) {
	page.DocumentID = uid.New()
	return s.pages.Create(ctx, page)
}

// UpdatePage overwrites an existing page's fields.
func (s *ContentService) UpdatePage(ctx context.Context, id int64, page model.Page) (*model.Page, error) {
	return s.pages.Update(ctx, id, page)
}

// DeletePage removes a page by internal id.
func (s *ContentService) DeletePage(ctx context.Context, id int64) error {
	return s.pages.Delete(ctx, id)
}
