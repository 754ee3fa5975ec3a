package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"storefront-cms-api/internal/middleware"
	"storefront-cms-api/internal/service"
	"storefront-cms-api/internal/shopify"
	"storefront-cms-api/pkg/apierror"
	"storefront-cms-api/pkg/response"
)

// topicHandler decodes a webhook payload and applies one reconciliation
// operation.
type topicHandler func(ctx context.Context, body []byte) error

// WebhookHandler handles inbound Shopify webhook deliveries: it verifies the
// HMAC signature over the raw request bytes, then routes the topic to the
// matching reconciliation operation.
type WebhookHandler struct {
	verifier *shopify.Verifier
	topics   map[string]topicHandler
}

// NewWebhookHandler creates a webhook handler. The topic table is the closed
// set of recognized topics; anything else is acknowledged without effect so
// unknown future topics never break Shopify's delivery retries.
func NewWebhookHandler(verifier *shopify.Verifier, svc *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		topics: map[string]topicHandler{
			shopify.TopicProductCreate:    productTopic(svc.ProcessProductCreate),
			shopify.TopicProductUpdate:    productTopic(svc.ProcessProductUpdate),
			shopify.TopicProductDelete:    productTopic(svc.ProcessProductDelete),
			shopify.TopicCollectionCreate: collectionTopic(svc.ProcessCollectionCreate),
			shopify.TopicCollectionUpdate: collectionTopic(svc.ProcessCollectionUpdate),
			shopify.TopicCollectionDelete: collectionTopic(svc.ProcessCollectionDelete),
		},
	}
}

func productTopic(fn func(context.Context, shopify.ProductPayload) error) topicHandler {
	return func(ctx context.Context, body []byte) error {
		var payload shopify.ProductPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("invalid product payload: %w", err)
		}
		return fn(ctx, payload)
	}
}

func collectionTopic(fn func(context.Context, shopify.CollectionPayload) error) topicHandler {
	return func(ctx context.Context, body []byte) error {
		var payload shopify.CollectionPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("invalid collection payload: %w", err)
		}
		return fn(ctx, payload)
	}
}

// Handle handles POST /api/shopify/webhook.
//
// Response contract: 200 {"received":true} on success, including unknown
// topics and idempotent no-ops; 400 when no webhook secret is configured
// server-side; 401 when the signature is missing or does not match (a
// generic message in both cases); 500 when reconciliation fails, so the
// sender redelivers.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	topic := r.Header.Get(shopify.HeaderTopic)
	signature := r.Header.Get(shopify.HeaderHmac)

	body, err := h.requestBody(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}

	// Verification is over the wire bytes and fails closed: a reconstructed
	// body that no longer matches the signature rejects the delivery.
	if err := h.verifier.Verify(body, signature); err != nil {
		switch err {
		case shopify.ErrSecretNotConfigured:
			log.Printf("[WebhookHandler] rejected delivery: webhook secret not configured")
			response.Error(w, apierror.BadRequest("webhook secret not configured"))
		default:
			log.Printf("[WebhookHandler] rejected delivery: %v (topic=%s)", err, topic)
			response.Error(w, apierror.Unauthorized("invalid webhook signature"))
		}
		return
	}

	handle, ok := h.topics[topic]
	if !ok {
		log.Printf("[WebhookHandler] unhandled topic %q, acknowledging", topic)
		h.acknowledge(w)
		return
	}

	if err := handle(r.Context(), body); err != nil {
		log.Printf("[WebhookHandler] processing failed: topic=%s error=%v", topic, err)
		response.Error(w, apierror.InternalError(fmt.Sprintf("failed to process webhook: %v", err)))
		return
	}

	log.Printf("[WebhookHandler] processed topic=%s", topic)
	h.acknowledge(w)
}

// requestBody returns the exact bytes the delivery carried. The raw-body
// middleware captures them before any decoding; when that capture is missing
// the parsed document is re-serialized as a best-effort substitute, which is
// not guaranteed to reproduce the sender's key order or whitespace, so
// verification of a substitute body can fail even for a genuine delivery.
func (h *WebhookHandler) requestBody(r *http.Request) ([]byte, error) {
	if raw, ok := middleware.RawBody(r.Context()); ok {
		return raw, nil
	}

	log.Printf("[WebhookHandler] raw body not captured, re-serializing parsed body (signature check may fail)")
	var doc map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode request body: %w", err)
	}
	return json.Marshal(doc)
}

func (h *WebhookHandler) acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}
