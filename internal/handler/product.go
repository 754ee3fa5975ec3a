package handler

import (
	"net/http"
	"strconv"

	"storefront-cms-api/internal/service"
	"storefront-cms-api/pkg/apierror"
	"storefront-cms-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// defaultPageSize bounds list endpoints when no limit is given.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads page/limit query parameters with sane bounds.
func parsePagination(r *http.Request) (page, limit, offset int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, (page - 1) * limit
}

// ProductHandler handles product read endpoints. Products are written only by
// the Shopify webhook sync; the content API exposes them read-only.
type ProductHandler struct {
	content *service.ContentService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(content *service.ContentService) *ProductHandler {
	return &ProductHandler{content: content}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)

	products, total, err := h.content.ListProducts(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, products, page, limit, total)
}

// GetByHandle handles GET /api/v1/products/handle/{handle}
func (h *ProductHandler) GetByHandle(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		response.Error(w, apierror.BadRequest("handle is required"))
		return
	}

	product, err := h.content.GetProductByHandle(r.Context(), handle)
	if err != nil {
		response.Error(w, err)
		return
	}
	if product == nil {
		response.Error(w, apierror.NotFound("product not found"))
		return
	}

	response.OK(w, product)
}
