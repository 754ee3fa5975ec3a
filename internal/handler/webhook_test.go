package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"storefront-cms-api/internal/handler"
	"storefront-cms-api/internal/repository"
	"storefront-cms-api/internal/router"
	"storefront-cms-api/internal/service"
	"storefront-cms-api/internal/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "shpss_test_secret"

type webhookFixture struct {
	router      http.Handler
	verifier    *shopify.Verifier
	products    repository.ProductRepository
	collections repository.CollectionRepository
}

func newWebhookFixture(t *testing.T, secret string) *webhookFixture {
	t.Helper()

	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "content.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	products := repository.NewSQLiteProductRepository(db)
	collections := repository.NewSQLiteCollectionRepository(db)
	svc := service.NewWebhookService(products, collections, nil)

	verifier := shopify.NewVerifier(secret)
	r := router.New(router.Config{
		WebhookHandler: handler.NewWebhookHandler(verifier, svc),
	})

	return &webhookFixture{
		router:      r,
		verifier:    verifier,
		products:    products,
		collections: collections,
	}
}

// deliver posts a webhook with the given topic and body, signing it unless
// sign is false.
func (f *webhookFixture) deliver(topic string, body []byte, sign bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, router.WebhookPath, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(shopify.HeaderTopic, topic)
	if sign {
		req.Header.Set(shopify.HeaderHmac, f.verifier.Sign(body))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func assertReceived(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["received"])
}

const shoeBody = `{"id":123,"title":"Shoe","body_html":"<p>x</p>","variants":[{"price":"19.99"}],"handle":"shoe"}`

func TestWebhook_ProductCreate(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	rec := f.deliver(shopify.TopicProductCreate, []byte(shoeBody), true)
	assertReceived(t, rec)

	p, err := f.products.FindByShopifyID(context.Background(), "123")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Shoe", p.Title)
	assert.Equal(t, "<p>x</p>", p.Description)
	assert.Equal(t, 19.99, p.Price)
	require.NotNil(t, p.Handle)
	assert.Equal(t, "shoe", *p.Handle)
}

func TestWebhook_DuplicateDelivery(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	assertReceived(t, f.deliver(shopify.TopicProductCreate, []byte(shoeBody), true))
	assertReceived(t, f.deliver(shopify.TopicProductCreate, []byte(shoeBody), true))

	_, total, err := f.products.List(context.Background(), 100, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestWebhook_ProductDelete(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	assertReceived(t, f.deliver(shopify.TopicProductCreate, []byte(shoeBody), true))
	assertReceived(t, f.deliver(shopify.TopicProductDelete, []byte(`{"id":123}`), true))

	p, err := f.products.FindByShopifyID(context.Background(), "123")
	require.NoError(t, err)
	assert.Nil(t, p)

	// Redelivered delete for the now-absent record still succeeds.
	assertReceived(t, f.deliver(shopify.TopicProductDelete, []byte(`{"id":123}`), true))
}

func TestWebhook_MissingSignature(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	rec := f.deliver(shopify.TopicProductCreate, []byte(shoeBody), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	p, err := f.products.FindByShopifyID(context.Background(), "123")
	require.NoError(t, err)
	assert.Nil(t, p, "unauthenticated delivery must not reach reconciliation")
}

func TestWebhook_TamperedBody(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	req := httptest.NewRequest(http.MethodPost, router.WebhookPath, bytes.NewReader([]byte(shoeBody)))
	req.Header.Set(shopify.HeaderTopic, shopify.TopicProductCreate)
	// Signature computed over a different body.
	req.Header.Set(shopify.HeaderHmac, f.verifier.Sign([]byte(`{"id":999}`)))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	p, err := f.products.FindByShopifyID(context.Background(), "123")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestWebhook_SecretNotConfigured(t *testing.T) {
	f := newWebhookFixture(t, "")

	rec := f.deliver(shopify.TopicProductCreate, []byte(shoeBody), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_UnrecognizedTopic(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	rec := f.deliver("inventory/update", []byte(`{"id":123}`), true)
	assertReceived(t, rec)

	_, total, err := f.products.List(context.Background(), 100, 0)
	require.NoError(t, err)
	assert.Zero(t, total, "unknown topics must have no side effect")
}

func TestWebhook_CollectionLifecycle(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	body := []byte(`{"id":9,"title":"Summer","body_html":"<p>sale</p>","handle":"summer"}`)
	assertReceived(t, f.deliver(shopify.TopicCollectionCreate, body, true))

	c, err := f.collections.FindByShopifyID(context.Background(), "9")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Summer", c.Title)

	renamed := []byte(`{"id":9,"title":"Winter","body_html":"<p>sale</p>","handle":"summer"}`)
	assertReceived(t, f.deliver(shopify.TopicCollectionUpdate, renamed, true))

	c, err = f.collections.FindByShopifyID(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "Winter", c.Title)

	assertReceived(t, f.deliver(shopify.TopicCollectionDelete, []byte(`{"id":9}`), true))
	c, err = f.collections.FindByShopifyID(context.Background(), "9")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestWebhook_SignatureIsOverWireBytes(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	// A semantically identical document with different key order must be
	// rejected when signed for the original ordering: verification covers
	// bytes, not structure.
	reordered := []byte(`{"title":"Shoe","id":123,"body_html":"<p>x</p>","variants":[{"price":"19.99"}],"handle":"shoe"}`)

	req := httptest.NewRequest(http.MethodPost, router.WebhookPath, bytes.NewReader(reordered))
	req.Header.Set(shopify.HeaderTopic, shopify.TopicProductCreate)
	req.Header.Set(shopify.HeaderHmac, f.verifier.Sign([]byte(shoeBody)))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
