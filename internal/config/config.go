package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Cache     CacheConfig
	ContentDB ContentDBConfig
	Shopify   ShopifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"storefront-cms-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	APIKey      string `envconfig:"API_KEY" default:""` // Key for content write endpoints
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// ContentDBConfig holds content database settings.
type ContentDBConfig struct {
	Type string `envconfig:"CONTENT_DB_TYPE" default:"sqlite"` // sqlite, mysql, or postgres
	Path string `envconfig:"CONTENT_DB_PATH" default:"./data/content.db"`
	// MySQL settings
	Host     string `envconfig:"CONTENT_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"CONTENT_DB_PORT" default:"3306"`
	Name     string `envconfig:"CONTENT_DB_NAME" default:"storefront"`
	User     string `envconfig:"CONTENT_DB_USER" default:"root"`
	Password string `envconfig:"CONTENT_DB_PASS" default:""`
	// PostgreSQL settings
	PGHost    string `envconfig:"CONTENT_PG_HOST" default:"localhost"`
	PGPort    int    `envconfig:"CONTENT_PG_PORT" default:"5432"`
	PGName    string `envconfig:"CONTENT_PG_NAME" default:"storefront"`
	PGUser    string `envconfig:"CONTENT_PG_USER" default:"postgres"`
	PGPass    string `envconfig:"CONTENT_PG_PASS" default:""`
	PGSSLMode string `envconfig:"CONTENT_PG_SSLMODE" default:"disable"`
}

// ShopifyConfig holds Shopify integration settings.
type ShopifyConfig struct {
	APIKey      string `envconfig:"SHOPIFY_API_KEY" default:""`
	APISecret   string `envconfig:"SHOPIFY_API_SECRET" default:""`
	AccessToken string `envconfig:"SHOPIFY_ADMIN_API_ACCESS_TOKEN" default:""`
	ShopName    string `envconfig:"SHOPIFY_SHOP_NAME" default:""`
	APIVersion  string `envconfig:"SHOPIFY_API_VERSION" default:"2023-04"`
	// Webhook signatures are keyed with the API secret unless a dedicated
	// webhook secret is configured.
	Secret string `envconfig:"SHOPIFY_WEBHOOK_SECRET" default:""`
}

// WebhookSecret returns the secret used to verify webhook signatures,
// falling back to the API secret when no dedicated secret is set.
func (s *ShopifyConfig) WebhookSecret() string {
	if s.Secret != "" {
		return s.Secret
	}
	return s.APISecret
}

// MySQLDSN returns the MySQL data source name.
func (c *ContentDBConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *ContentDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PGUser, c.PGPass, c.PGHost, c.PGPort, c.PGName, c.PGSSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
