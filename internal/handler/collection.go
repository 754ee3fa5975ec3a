package handler

import (
	"net/http"

	"storefront-cms-api/internal/service"
	"storefront-cms-api/pkg/apierror"
	"storefront-cms-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CollectionHandler handles collection read endpoints.
type CollectionHandler struct {
	content *service.ContentService
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(content *service.ContentService) *CollectionHandler {
	return &CollectionHandler{content: content}
}

// List handles GET /api/v1/collections
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)

	collections, total, err := h.content.ListCollections(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, collections, page, limit, total)
}

// GetByHandle handles GET /api/v1/collections/handle/{handle}
func (h *CollectionHandler) GetByHandle(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		response.Error(w, apierror.BadRequest("handle is required"))
		return
	}

	collection, err := h.content.GetCollectionByHandle(r.Context(), handle)
	if err != nil {
		response.Error(w, err)
		return
	}
	if collection == nil {
		response.Error(w, apierror.NotFound("collection not found"))
		return
	}

	response.OK(w, collection)
}
