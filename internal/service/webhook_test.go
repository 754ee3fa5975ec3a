package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront-cms-api/internal/cache"
	"storefront-cms-api/internal/model"
	"storefront-cms-api/internal/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProductRepo implements repository.ProductRepository in memory.
type fakeProductRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[string]*model.Product // keyed by shopify id

	createCalls atomic.Int64
	failWith    error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{records: make(map[string]*model.Product)}
}

func (f *fakeProductRepo) FindByShopifyID(ctx context.Context, shopifyID string) (*model.Product, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.records[shopifyID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, data model.ProductData) (*model.Product, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.createCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.records[data.ShopifyID]; ok {
		p.Title, p.Description, p.Price, p.Handle = data.Title, data.Description, data.Price, data.Handle
		cp := *p
		return &cp, nil
	}
	f.nextID++
	p := &model.Product{
		ID:          f.nextID,
		Title:       data.Title,
		Description: data.Description,
		Price:       data.Price,
		ShopifyID:   data.ShopifyID,
		Handle:      data.Handle,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.records[data.ShopifyID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, id int64, data model.ProductData) (*model.Product, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.records {
		if p.ID == id {
			p.Title, p.Description, p.Price, p.Handle = data.Title, data.Description, data.Price, data.Handle
			p.UpdatedAt = time.Now()
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.New("product not found")
}

func (f *fakeProductRepo) Delete(ctx context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid, p := range f.records {
		if p.ID == id {
			delete(f.records, sid)
			return nil
		}
	}
	return nil
}

func (f *fakeProductRepo) GetByHandle(ctx context.Context, handle string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.records {
		if p.Handle != nil && *p.Handle == handle {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) List(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Product, 0, len(f.records))
	for _, p := range f.records {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// fakeCollectionRepo implements repository.CollectionRepository in memory.
type fakeCollectionRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[string]*model.Collection
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{records: make(map[string]*model.Collection)}
}

func (f *fakeCollectionRepo) FindByShopifyID(ctx context.Context, shopifyID string) (*model.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.records[shopifyID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCollectionRepo) Create(ctx context.Context, data model.CollectionData) (*model.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := &model.Collection{
		ID:          f.nextID,
		Title:       data.Title,
		Description: data.Description,
		ShopifyID:   data.ShopifyID,
		Handle:      data.Handle,
	}
	f.records[data.ShopifyID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeCollectionRepo) Update(ctx context.Context, id int64, data model.CollectionData) (*model.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.records {
		if c.ID == id {
			c.Title, c.Description, c.Handle = data.Title, data.Description, data.Handle
			cp := *c
			return &cp, nil
		}
	}
	return nil, errors.New("collection not found")
}

func (f *fakeCollectionRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid, c := range f.records {
		if c.ID == id {
			delete(f.records, sid)
			return nil
		}
	}
	return nil
}

func (f *fakeCollectionRepo) GetByHandle(ctx context.Context, handle string) (*model.Collection, error) {
	return nil, nil
}

func (f *fakeCollectionRepo) List(ctx context.Context, limit, offset int) ([]model.Collection, int64, error) {
	return nil, 0, nil
}

func shoePayload() shopify.ProductPayload {
	return shopify.ProductPayload{
		ID:       123,
		Title:    "Shoe",
		BodyHTML: "<p>x</p>",
		Handle:   "shoe",
		Variants: []shopify.Variant{{Price: "19.99"}},
	}
}

func newTestService(products *fakeProductRepo, collections *fakeCollectionRepo, c cache.Cache) *WebhookService {
	return NewWebhookService(products, collections, c)
}

func TestProcessProductCreate_New(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newTestService(repo, newFakeCollectionRepo(), nil)

	require.NoError(t, svc.ProcessProductCreate(context.Background(), shoePayload()))

	p, err := repo.FindByShopifyID(context.Background(), "123")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Shoe", p.Title)
	assert.Equal(t, "<p>x</p>", p.Description)
	assert.Equal(t, 19.99, p.Price)
	require.NotNil(t, p.Handle)
	assert.Equal(t, "shoe", *p.Handle)
}

func TestProcessProductCreate_DuplicateDelivery(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newTestService(repo, newFakeCollectionRepo(), nil)
	ctx := context.Background()

	require.NoError(t, svc.ProcessProductCreate(ctx, shoePayload()))
	require.NoError(t, svc.ProcessProductCreate(ctx, shoePayload()))

	items, total, err := repo.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, repo.createCalls.Load(), "second delivery must update, not create")
}

func TestProcessProductCreate_ThenUpdate_SameRecord(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newTestService(repo, newFakeCollectionRepo(), nil)
	ctx := context.Background()

	require.NoError(t, svc.ProcessProductCreate(ctx, shoePayload()))
	first, _ := repo.FindByShopifyID(ctx, "123")

	updated := shoePayload()
	updated.Title = "Better Shoe"
	updated.Variants = []shopify.Variant{{Price: "24.99"}}
	require.NoError(t, svc.ProcessProductUpdate(ctx, updated))

	second, _ := repo.FindByShopifyID(ctx, "123")
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID, "update must keep the internal id")
	assert.Equal(t, "Better Shoe", second.Title)
	assert.Equal(t, 24.99, second.Price)
}

func TestProcessProductUpdate_BeforeCreate_Upserts(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newTestService(repo, newFakeCollectionRepo(), nil)
	ctx := context.Background()

	// Deliveries carry no ordering guarantee: the update may land first.
	require.NoError(t, svc.ProcessProductUpdate(ctx, shoePayload()))

	p, err := repo.FindByShopifyID(ctx, "123")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Shoe", p.Title)

	// The late create is then a plain idempotent re-apply.
	require.NoError(t, svc.ProcessProductCreate(ctx, shoePayload()))
	_, total, _ := repo.List(ctx, 100, 0)
	assert.EqualValues(t, 1, total)
}

func TestProcessProductDelete(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newTestService(repo, newFakeCollectionRepo(), nil)
	ctx := context.Background()

	// Deleting an absent record succeeds.
	require.NoError(t, svc.ProcessProductDelete(ctx, shopify.ProductPayload{ID: 123}))

	require.NoError(t, svc.ProcessProductCreate(ctx, shoePayload()))
	require.NoError(t, svc.ProcessProductDelete(ctx, shopify.ProductPayload{ID: 123}))

	p, err := repo.FindByShopifyID(ctx, "123")
	require.NoError(t, err)
	assert.Nil(t, p)

	// And deleting again is still a success.
	require.NoError(t, svc.ProcessProductDelete(ctx, shopify.ProductPayload{ID: 123}))
}

func TestProcessProduct_RepositoryErrorPropagates(t *testing.T) {
	repo := newFakeProductRepo()
	repo.failWith = errors.New("disk full")
	svc := newTestService(repo, newFakeCollectionRepo(), nil)

	err := svc.ProcessProductCreate(context.Background(), shoePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestProcessProductCreate_ConcurrentDeliveriesSerialized(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newTestService(repo, newFakeCollectionRepo(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.ProcessProductCreate(ctx, shoePayload()))
		}()
	}
	wg.Wait()

	_, total, err := repo.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.EqualValues(t, 1, repo.createCalls.Load(), "the lookup-then-write sequence must be serialized per shopify id")
}

func TestProcessProductUpdate_InvalidatesCache(t *testing.T) {
	repo := newFakeProductRepo()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	svc := newTestService(repo, newFakeCollectionRepo(), mem)
	ctx := context.Background()

	require.NoError(t, svc.ProcessProductCreate(ctx, shoePayload()))

	require.NoError(t, mem.Set(ctx, cache.ProductHandleKey("shoe"), []byte(`stale`), time.Minute))

	renamed := shoePayload()
	renamed.Handle = "sneaker"
	require.NoError(t, svc.ProcessProductUpdate(ctx, renamed))

	_, err := mem.Get(ctx, cache.ProductHandleKey("shoe"))
	assert.ErrorIs(t, err, cache.ErrCacheMiss, "old handle entry must be invalidated")
}

func TestProcessCollectionLifecycle(t *testing.T) {
	collections := newFakeCollectionRepo()
	svc := newTestService(newFakeProductRepo(), collections, nil)
	ctx := context.Background()

	payload := shopify.CollectionPayload{ID: 9, Title: "Summer", BodyHTML: "<p>sale</p>", Handle: "summer"}
	require.NoError(t, svc.ProcessCollectionCreate(ctx, payload))

	c, err := collections.FindByShopifyID(ctx, "9")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Summer", c.Title)

	payload.Title = "Winter"
	require.NoError(t, svc.ProcessCollectionUpdate(ctx, payload))
	c, _ = collections.FindByShopifyID(ctx, "9")
	assert.Equal(t, "Winter", c.Title)

	require.NoError(t, svc.ProcessCollectionDelete(ctx, shopify.CollectionPayload{ID: 9}))
	c, _ = collections.FindByShopifyID(ctx, "9")
	assert.Nil(t, c)

	// Redelivered delete is a no-op success.
	require.NoError(t, svc.ProcessCollectionDelete(ctx, shopify.CollectionPayload{ID: 9}))
}
