package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-cms-api/internal/cache"
	"storefront-cms-api/internal/config"
	"storefront-cms-api/internal/handler"
	"storefront-cms-api/internal/middleware"
	"storefront-cms-api/internal/repository"
	"storefront-cms-api/internal/router"
	"storefront-cms-api/internal/service"
	"storefront-cms-api/internal/shopify"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting storefront CMS API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	if cfg.Shopify.WebhookSecret() == "" {
		log.Println("Warning: no Shopify webhook secret configured - webhook deliveries will be rejected")
	}

	// Initialize content repositories based on config
	var (
		productRepo    repository.ProductRepository
		collectionRepo repository.CollectionRepository
		articleRepo    repository.ArticleRepository
		pageRepo       repository.PageRepository
	)

	switch cfg.ContentDB.Type {
	case "mysql":
		mysqlDB, err := repository.OpenMySQL(cfg.ContentDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		defer mysqlDB.Close()
		productRepo = repository.NewMySQLProductRepository(mysqlDB)
		collectionRepo = repository.NewMySQLCollectionRepository(mysqlDB)
		// Editorial content stays on SQLite alongside the MySQL catalog.
		articleRepo, pageRepo = mustOpenEditorialSQLite(cfg.ContentDB.Path)
		log.Println("MySQL catalog repositories initialized")
	case "postgres", "postgresql":
		pgDB, err := repository.OpenPostgres(cfg.ContentDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		defer pgDB.Close()
		productRepo = repository.NewPostgresProductRepository(pgDB)
		collectionRepo = repository.NewPostgresCollectionRepository(pgDB)
		articleRepo, pageRepo = mustOpenEditorialSQLite(cfg.ContentDB.Path)
		log.Println("PostgreSQL catalog repositories initialized")
	default: // sqlite
		db, err := repository.OpenSQLite(cfg.ContentDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		defer db.Close()
		productRepo = repository.NewSQLiteProductRepository(db)
		collectionRepo = repository.NewSQLiteCollectionRepository(db)
		articleRepo = repository.NewSQLiteArticleRepository(db)
		pageRepo = repository.NewSQLitePageRepository(db)
		log.Println("SQLite content repositories initialized")
	}

	// Initialize cache
	var contentCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.App.Name + ":",
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
			contentCache = cache.NewMemoryCache()
		} else {
			defer redisCache.Close()
			contentCache = redisCache
			log.Println("Redis cache initialized")
		}
	default:
		contentCache = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}

	// Initialize services
	webhookService := service.NewWebhookService(productRepo, collectionRepo, contentCache)
	contentService := service.NewContentService(productRepo, collectionRepo, articleRepo, pageRepo, contentCache, cfg.Cache.TTL)

	// Initialize handlers
	verifier := shopify.NewVerifier(cfg.Shopify.WebhookSecret())
	healthHandler := handler.New()
	webhookHandler := handler.NewWebhookHandler(verifier, webhookService)
	productHandler := handler.NewProductHandler(contentService)
	collectionHandler := handler.NewCollectionHandler(contentService)
	articleHandler := handler.NewArticleHandler(contentService)
	pageHandler := handler.NewPageHandler(contentService)

	// Create router
	r := router.New(router.Config{
		Handler:           healthHandler,
		WebhookHandler:    webhookHandler,
		ProductHandler:    productHandler,
		CollectionHandler: collectionHandler,
		ArticleHandler:    articleHandler,
		PageHandler:       pageHandler,
		AuthMiddleware:    middleware.NewAPIKeyAuth(cfg.App.APIKey),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// mustOpenEditorialSQLite opens the SQLite store used for articles and pages
// when the catalog lives in an external database.
func mustOpenEditorialSQLite(path string) (repository.ArticleRepository, repository.PageRepository) {
	db, err := repository.OpenSQLite(path)
	if err != nil {
		log.Fatalf("Failed to initialize editorial SQLite store: %v", err)
	}
	// The handle stays open for the life of the process.
	return repository.NewSQLiteArticleRepository(db), repository.NewSQLitePageRepository(db)
}
