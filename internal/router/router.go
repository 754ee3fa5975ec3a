package router

import (
	"net/http"

	"storefront-cms-api/internal/handler"
	"storefront-cms-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler           *handler.Handler
	WebhookHandler    *handler.WebhookHandler
	ProductHandler    *handler.ProductHandler
	CollectionHandler *handler.CollectionHandler
	ArticleHandler    *handler.ArticleHandler
	PageHandler       *handler.PageHandler
	AuthMiddleware    func(http.Handler) http.Handler
}

// WebhookPath is the Shopify webhook endpoint. The raw-body middleware keys
// off this path so the verifier sees the wire bytes.
const WebhookPath = "/api/shopify/webhook"

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.NewRawBodyCapture(http.MethodPost, WebhookPath))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// Shopify webhook - public at the transport layer, authenticated by its
	// HMAC signature.
	if cfg.WebhookHandler != nil {
		r.Post(WebhookPath, cfg.WebhookHandler.Handle)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Catalog read endpoints (written only by the webhook sync)
		if cfg.ProductHandler != nil {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", cfg.ProductHandler.List)
				r.Get("/handle/{handle}", cfg.ProductHandler.GetByHandle)
			})
		}
		if cfg.CollectionHandler != nil {
			r.Route("/collections", func(r chi.Router) {
				r.Get("/", cfg.CollectionHandler.List)
				r.Get("/handle/{handle}", cfg.CollectionHandler.GetByHandle)
			})
		}

		// Editorial content - reads public, writes behind API key
		if cfg.ArticleHandler != nil {
			r.Route("/articles", func(r chi.Router) {
				r.Get("/", cfg.ArticleHandler.List)
				r.Get("/slug/{slug}", cfg.ArticleHandler.GetBySlug)

				r.Group(func(r chi.Router) {
					if cfg.AuthMiddleware != nil {
						r.Use(cfg.AuthMiddleware)
					}
					r.Post("/", cfg.ArticleHandler.Create)
					r.Put("/{id}", cfg.ArticleHandler.Update)
					r.Delete("/{id}", cfg.ArticleHandler.Delete)
				})
			})
		}
		if cfg.PageHandler != nil {
			r.Route("/pages", func(r chi.Router) {
				r.Get("/", cfg.PageHandler.List)
				r.Get("/slug/{slug}", cfg.PageHandler.GetBySlug)

				r.Group(func(r chi.Router) {
					if cfg.AuthMiddleware != nil {
						r.Use(cfg.AuthMiddleware)
					}
					r.Post("/", cfg.PageHandler.Create)
					r.Put("/{id}", cfg.PageHandler.Update)
					r.Delete("/{id}", cfg.PageHandler.Delete)
				})
			})
		}
	})

	return r
}
