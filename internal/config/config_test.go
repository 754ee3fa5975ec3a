package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "sqlite", cfg.ContentDB.Type)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, "2023-04", cfg.Shopify.APIVersion)
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CONTENT_DB_TYPE", "mysql")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.ContentDB.Type)
	assert.True(t, cfg.App.IsProduction())
}

func TestWebhookSecret_Fallback(t *testing.T) {
	s := ShopifyConfig{APISecret: "api-secret"}
	assert.Equal(t, "api-secret", s.WebhookSecret())

	s.Secret = "dedicated"
	assert.Equal(t, "dedicated", s.WebhookSecret())

	assert.Empty(t, (&ShopifyConfig{}).WebhookSecret())
}

func TestMySQLDSN(t *testing.T) {
	c := ContentDBConfig{
		Host: "db.internal", Port: 3306,
		Name: "storefront", User: "app", Password: "pw",
	}
	assert.Equal(t, "app:pw@tcp(db.internal:3306)/storefront?parseTime=true", c.MySQLDSN())
}

func TestPostgresDSN(t *testing.T) {
	c := ContentDBConfig{
		PGHost: "pg.internal", PGPort: 5432,
		PGName: "storefront", PGUser: "app", PGPass: "pw", PGSSLMode: "require",
	}
	assert.Equal(t, "postgres://app:pw@pg.internal:5432/storefront?sslmode=require", c.PostgresDSN())
}
