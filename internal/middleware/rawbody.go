package middleware

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
)

// RawBodyKey is the context key for the captured request body bytes.
const RawBodyKey contextKey = "raw_body"

// maxWebhookBody caps how much of a webhook request body is buffered.
// Shopify product payloads are well under this.
const maxWebhookBody = 5 << 20 // 5 MiB

// NewRawBodyCapture creates a middleware that, for requests matching the
// given method and path, buffers the exact bytes of the request body into the
// request context and replaces r.Body with a fresh reader over the same
// bytes. Signature verification needs the wire bytes untouched; decoding the
// JSON from a re-serialized document would change key order and whitespace
// and can never reproduce the sender's signature.
func NewRawBodyCapture(method, path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method || r.URL.Path != path {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
			if err != nil {
				// Non-fatal: the handler falls back to re-serializing the
				// parsed document, and verification fails closed from there.
				log.Printf("[RawBodyCapture] failed to read request body: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(raw))

			ctx := context.WithValue(r.Context(), RawBodyKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RawBody retrieves the captured request body bytes from context.
func RawBody(ctx context.Context) ([]byte, bool) {
	raw, ok := ctx.Value(RawBodyKey).([]byte)
	return raw, ok
}
