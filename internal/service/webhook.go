package service

import (
	"context"
	"fmt"
	"log"

	"storefront-cms-api/internal/cache"
	"storefront-cms-api/internal/model"
	"storefront-cms-api/internal/repository"
	"storefront-cms-api/internal/shopify"
)

// WebhookService reconciles local catalog records against Shopify webhook
// notifications. All operations are idempotent per Shopify id: create
// upgrades to update when the record exists, update inserts when it does not
// (deliveries carry no ordering guarantee), and delete of an absent record is
// a successful no-op.
type WebhookService struct {
	products    repository.ProductRepository
	collections repository.CollectionRepository
	cache       cache.Cache
	locks       *keyedMutex
}

// NewWebhookService creates a webhook reconciliation service.
// cache may be nil when no read cache is configured.
func NewWebhookService(
	products repository.ProductRepository,
	collections repository.CollectionRepository,
	c cache.Cache,
) *WebhookService {
	if products == nil || collections == nil {
		return nil
	}
	return &WebhookService{
		products:    products,
		collections: collections,
		cache:       c,
		locks:       newKeyedMutex(),
	}
}

// ProcessProductCreate handles a products/create delivery. If a record for
// the Shopify id already exists (the create arrived after an update, or is a
// redelivery), it is updated in place.
func (s *WebhookService) ProcessProductCreate(ctx context.Context, payload shopify.ProductPayload) error {
	data := payload.ProductData()

	unlock := s.locks.Lock("product:" + data.ShopifyID)
	defer unlock()

	existing, err := s.products.FindByShopifyID(ctx, data.ShopifyID)
	if err != nil {
		return fmt.Errorf("product create %s: %w", data.ShopifyID, err)
	}
	if existing != nil {
		log.Printf("[WebhookService] product %s already exists, updating instead (id=%d)", data.ShopifyID, existing.ID)
		return s.updateProduct(ctx, existing, data)
	}

	created, err := s.products.Create(ctx, data)
	if err != nil {
		return fmt.Errorf("product create %s: %w", data.ShopifyID, err)
	}
	log.Printf("[WebhookService] product created: id=%d shopify_id=%s", created.ID, created.ShopifyID)
	s.invalidateProduct(ctx, data.Handle, nil)
	return nil
}

// ProcessProductUpdate handles a products/update delivery, inserting the
// record when an update arrives before its create.
func (s *WebhookService) ProcessProductUpdate(ctx context.Context, payload shopify.ProductPayload) error {
	data := payload.ProductData()

	unlock := s.locks.Lock("product:" + data.ShopifyID)
	defer unlock()

	existing, err := s.products.FindByShopifyID(ctx, data.ShopifyID)
	if err != nil {
		return fmt.Errorf("product update %s: %w", data.ShopifyID, err)
	}
	if existing == nil {
		created, err := s.products.Create(ctx, data)
		if err != nil {
			return fmt.Errorf("product update %s: %w", data.ShopifyID, err)
		}
		log.Printf("[WebhookService] product created (via update): id=%d shopify_id=%s", created.ID, created.ShopifyID)
		s.invalidateProduct(ctx, data.Handle, nil)
		return nil
	}
	return s.updateProduct(ctx, existing, data)
}

func (s *WebhookService) updateProduct(ctx context.Context, existing *model.Product, data model.ProductData) error {
	updated, err := s.products.Update(ctx, existing.ID, data)
	if err != nil {
		return fmt.Errorf("product update %s: %w", data.ShopifyID, err)
	}
	log.Printf("[WebhookService] product updated: id=%d shopify_id=%s", updated.ID, updated.ShopifyID)
	s.invalidateProduct(ctx, data.Handle, existing.Handle)
	return nil
}

// ProcessProductDelete handles a products/delete delivery. Deleting an
// already-absent record is reported as success.
func (s *WebhookService) ProcessProductDelete(ctx context.Context, payload shopify.ProductPayload) error {
	shopifyID := payload.ProductData().ShopifyID

	unlock := s.locks.Lock("product:" + shopifyID)
	defer unlock()

	existing, err := s.products.FindByShopifyID(ctx, shopifyID)
	if err != nil {
		return fmt.Errorf("product delete %s: %w", shopifyID, err)
	}
	if existing == nil {
		log.Printf("[WebhookService] product %s already absent, nothing to delete", shopifyID)
		return nil
	}

	if err := s.products.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("product delete %s: %w", shopifyID, err)
	}
	log.Printf("[WebhookService] product deleted: id=%d shopify_id=%s", existing.ID, shopifyID)
	s.invalidateProduct(ctx, existing.Handle, nil)
	return nil
}

// ProcessCollectionCreate handles a collections/create delivery.
func (s *WebhookService) ProcessCollectionCreate(ctx context.Context, payload shopify.CollectionPayload) error {
	data := payload.CollectionData()

	unlock := s.locks.Lock("collection:" + data.ShopifyID)
	defer unlock()

	existing, err := s.collections.FindByShopifyID(ctx, data.ShopifyID)
	if err != nil {
		return fmt.Errorf("collection create %s: %w", data.ShopifyID, err)
	}
	if existing != nil {
		log.Printf("[WebhookService] collection %s already exists, updating instead (id=%d)", data.ShopifyID, existing.ID)
		return s.updateCollection(ctx, existing, data)
	}

	created, err := s.collections.Create(ctx, data)
	if err != nil {
		return fmt.Errorf("collection create %s: %w", data.ShopifyID, err)
	}
	log.Printf("[WebhookService] collection created: id=%d shopify_id=%s", created.ID, created.ShopifyID)
	s.invalidateCollection(ctx, data.Handle, nil)
	return nil
}

// ProcessCollectionUpdate handles a collections/update delivery, inserting
// when the record is absent.
func (s *WebhookService) ProcessCollectionUpdate(ctx context.Context, payload shopify.CollectionPayload) error {
	data := payload.CollectionData()

	unlock := s.locks.Lock("collection:" + data.ShopifyID)
	defer unlock()

	existing, err := s.collections.FindByShopifyID(ctx, data.ShopifyID)
	if err != nil {
		return fmt.Errorf("collection update %s: %w", data.ShopifyID, err)
	}
	if existing == nil {
		created, err := s.collections.Create(ctx, data)
		if err != nil {
			return fmt.Errorf("collection update %s: %w", data.ShopifyID, err)
		}
		log.Printf("[WebhookService] collection created (via update): id=%d shopify_id=%s", created.ID, created.ShopifyID)
		s.invalidateCollection(ctx, data.Handle, nil)
		return nil
	}
	return s.updateCollection(ctx, existing, data)
}

func (s *WebhookService) updateCollection(ctx context.Context, existing *model.Collection, data model.CollectionData) error {
	updated, err := s.collections.Update(ctx, existing.ID, data)
	if err != nil {
		return fmt.Errorf("collection update %s: %w", data.ShopifyID, err)
	}
	log.Printf("[WebhookService] collection updated: id=%d shopify_id=%s", updated.ID, updated.ShopifyID)
	s.invalidateCollection(ctx, data.Handle, existing.Handle)
	return nil
}

// ProcessCollectionDelete handles a collections/delete delivery.
func (s *WebhookService) ProcessCollectionDelete(ctx context.Context, payload shopify.CollectionPayload) error {
	shopifyID := payload.CollectionData().ShopifyID

	unlock := s.locks.Lock("collection:" + shopifyID)
	defer unlock()

	existing, err := s.collections.FindByShopifyID(ctx, shopifyID)
	if err != nil {
		return fmt.Errorf("collection delete %s: %w", shopifyID, err)
	}
	if existing == nil {
		log.Printf("[WebhookService] collection %s already absent, nothing to delete", shopifyID)
		return nil
	}

	if err := s.collections.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("collection delete %s: %w", shopifyID, err)
	}
	log.Printf("[WebhookService] collection deleted: id=%d shopify_id=%s", existing.ID, shopifyID)
	s.invalidateCollection(ctx, existing.Handle, nil)
	return nil
}

// invalidateProduct drops cached lookups for the given handles. Cache errors
// only cost a stale read until TTL expiry, so they are logged, not returned.
func (s *WebhookService) invalidateProduct(ctx context.Context, handles ...*string) {
	if s.cache == nil {
		return
	}
	for _, h := range handles {
		if h == nil {
			continue
		}
		if err := s.cache.Delete(ctx, cache.ProductHandleKey(*h)); err != nil {
			log.Printf("[WebhookService] cache invalidation failed for product handle %q: %v", *h, err)
		}
	}
}

func (s *WebhookService) invalidateCollection(ctx context.Context, handles ...*string) {
	if s.cache == nil {
		return
	}
	for _, h := range handles {
		if h == nil {
			continue
		}
		if err := s.cache.Delete(ctx, cache.CollectionHandleKey(*h)); err != nil {
			log.Printf("[WebhookService] cache invalidation failed for collection handle %q: %v", *h, err)
		}
	}
}
