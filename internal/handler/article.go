package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"storefront-cms-api/internal/model"
	"storefront-cms-api/internal/service"
	"storefront-cms-api/pkg/apierror"
	"storefront-cms-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ArticleHandler handles article CRUD endpoints. Writes sit behind the
// API-key middleware.
type ArticleHandler struct {
	content *service.ContentService
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(content *service.ContentService) *ArticleHandler {
	return &ArticleHandler{content: content}
}

// articleRequest is the write payload for create/update.
type articleRequest struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at"`
}

func (req *articleRequest) validate() *apierror.Error {
	var details []apierror.FieldError
	if req.Title == "" {
		details = append(details, apierror.FieldError{Field: "title", Message: "title is required"})
	}
	if req.Slug == "" {
		details = append(details, apierror.FieldError{Field: "slug", Message: "slug is required"})
	}
	if len(details) > 0 {
		return apierror.ValidationError("invalid article", details...)
	}
	return nil
}

// List handles GET /api/v1/articles
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)

	articles, total, err := h.content.ListArticles(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, articles, page, limit, total)
}

// GetBySlug handles GET /api/v1/articles/slug/{slug}
func (h *ArticleHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := h.content.GetArticleBySlug(r.Context(), slug)
	if err != nil {
		response.Error(w, err)
		return
	}
	if article == nil {
		response.Error(w, apierror.NotFound("article not found"))
		return
	}

	response.OK(w, article)
}

// Create handles POST /api/v1/articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := req.validate(); verr != nil {
		response.Error(w, verr)
		return
	}

	article, err := h.content.CreateArticle(r.Context(), model.Article{
		Title:       req.Title,
		Slug:        req.Slug,
		Body:        req.Body,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, article)
}

// Update handles PUT /api/v1/articles/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid article id"))
		return
	}

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := req.validate(); verr != nil {
		response.Error(w, verr)
		return
	}

	article, err := h.content.UpdateArticle(r.Context(), id, model.Article{
		Title:       req.Title,
		Slug:        req.Slug,
		Body:        req.Body,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, article)
}

// Delete handles DELETE /api/v1/articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid article id"))
		return
	}

	if err := h.content.DeleteArticle(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}
