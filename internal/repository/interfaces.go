package repository

import (
	"context"

	"storefront-cms-api/internal/model"
)

// ProductRepository defines product data access methods.
type ProductRepository interface {
	// FindByShopifyID looks up a product by its Shopify id.
	// Returns (nil, nil) when no product matches.
	FindByShopifyID(ctx context.Context, shopifyID string) (*model.Product, error)

	// Create inserts a product. Backends with a unique index on shopify_id
	// upsert on conflict so a duplicate create can never produce two rows.
	Create(ctx context.Context, data model.ProductData) (*model.Product, error)

	// Update overwrites the mutable fields of the product with the given
	// internal id.
	Update(ctx context.Context, id int64, data model.ProductData) (*model.Product, error)

	// Delete removes the product with the given internal id.
	Delete(ctx context.Context, id int64) error

	// GetByHandle looks up a product by its storefront handle.
	// Returns (nil, nil) when no product matches.
	GetByHandle(ctx context.Context, handle string) (*model.Product, error)

	// List returns a page of products plus the total count.
	List(ctx context.Context, limit, offset int) ([]model.Product, int64, error)
}

// CollectionRepository defines collection data access methods.
type CollectionRepository interface {
	FindByShopifyID(ctx context.Context, shopifyID string) (*model.Collection, error)
	Create(ctx context.Context, data model.CollectionData) (*model.Collection, error)
	Update(ctx context.Context, id int64, data model.CollectionData) (*model.Collection, error)
	Delete(ctx context.Context, id int64) error
	GetByHandle(ctx context.Context, handle string) (*model.Collection, error)
	List(ctx context.Context, limit, offset int) ([]model.Collection, int64, error)
}

// ArticleRepository defines article data access methods.
type ArticleRepository interface {
	GetBySlug(ctx context.Context, slug string) (*model.Article, error)
	Create(ctx context.Context, article model.Article) (*model.Article, error)
	Update(ctx context.Context, id int64, article model.Article) (*model.Article, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]model.Article, int64, error)
}

// PageRepository defines page data access methods.
type PageRepository interface {
	GetBySlug(ctx context.Context, slug string) (*model.Page, error)
	Create(ctx context.Context, page model.Page) (*model.Page, error)
	Update(ctx context.Context, id int64, page model.Page) (*model.Page, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]model.Page, int64, error)
}
