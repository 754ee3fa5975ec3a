package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawBodyCapture_PreservesWireBytes(t *testing.T) {
	// Whitespace and key order must survive untouched; any normalization
	// would break signature verification downstream.
	body := []byte("{\"b\": 2,\n  \"a\": 1}")

	var captured []byte
	var rereadBody []byte
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := RawBody(r.Context())
		require.True(t, ok)
		captured = raw

		// The body must still be readable by ordinary decoders.
		var err error
		rereadBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
	})

	mw := NewRawBodyCapture(http.MethodPost, "/api/shopify/webhook")
	req := httptest.NewRequest(http.MethodPost, "/api/shopify/webhook", bytes.NewReader(body))
	mw(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, body, captured)
	assert.Equal(t, body, rereadBody)
}

func TestRawBodyCapture_IgnoresOtherRoutes(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := RawBody(r.Context())
		assert.False(t, ok, "capture must only run for the configured route")
	})

	mw := NewRawBodyCapture(http.MethodPost, "/api/shopify/webhook")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles", bytes.NewReader([]byte(`{}`)))
	mw(next).ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/shopify/webhook", nil)
	mw(next).ServeHTTP(httptest.NewRecorder(), req)
}

func TestRawBodyCapture_EmptyBody(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := RawBody(r.Context())
		require.True(t, ok)
		assert.Empty(t, raw)
	})

	mw := NewRawBodyCapture(http.MethodPost, "/api/shopify/webhook")
	req := httptest.NewRequest(http.MethodPost, "/api/shopify/webhook", bytes.NewReader(nil))
	mw(next).ServeHTTP(httptest.NewRecorder(), req)
}

func TestRawBody_AbsentFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	_, ok := RawBody(req.Context())
	assert.False(t, ok)
}
