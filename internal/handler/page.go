package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"storefront-cms-api/internal/model"
	"storefront-cms-api/internal/service"
	"storefront-cms-api/pkg/apierror"
	"storefront-cms-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// PageHandler handles page CRUD endpoints. Writes sit behind the API-key
// middleware.
type PageHandler struct {
	content *service.ContentService
}

// NewPageHandler creates a new page handler.
func NewPageHandler(content *service.ContentService) *PageHandler {
	return &PageHandler{content: content}
}

// pageRequest is the write payload for create/update.
type pageRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Body  string `json:"body"`
}

func (req *pageRequest) validate() *apierror.Error {
	var details []apierror.FieldError
	if req.Title == "" {
		details = append(details, apierror.FieldError{Field: "title", Message: "title is required"})
	}
	if req.Slug == "" {
		details = append(details, apierror.FieldError{Field: "slug", Message: "slug is required"})
	}
	if len(details) > 0 {
		return apierror.ValidationError("invalid page", details...)
	}
	return nil
}

// List handles GET /api/v1/pages
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)

	pages, total, err := h.content.ListPages(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, pages, page, limit, total)
}

// GetBySlug handles GET /api/v1/pages/slug/{slug}
func (h *PageHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.content.GetPageBySlug(r.Context(), slug)
	if err != nil {
		response.Error(w, err)
		return
	}
	if page == nil {
		response.Error(w, apierror.NotFound("page not found"))
		return
	}

	response.OK(w, page)
}

// Create handles POST /api/v1/pages
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := req.validate(); verr != nil {
		response.Error(w, verr)
		return
	}

	page, err := h.content.CreatePage(r.Context(), model.Page{
		Title: req.Title,
		Slug:  req.Slug,
		Body:  req.Body,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, page)
}

// Update handles PUT /api/v1/pages/{id}
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid page id"))
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := req.validate(); verr != nil {
		response.Error(w, verr)
		return
	}

	page, err := h.content.UpdatePage(r.Context(), id, model.Page{
		Title: req.Title,
		Slug:  req.Slug,
		Body:  req.Body,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, page)
}

// Delete handles DELETE /api/v1/pages/{id}
func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid page id"))
		return
	}

	if err := h.content.DeletePage(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}
