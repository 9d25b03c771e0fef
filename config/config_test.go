package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"DB_TYPE": "memory"})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 180, cfg.ReadTimeout)
	assert.Equal(t, "memory", cfg.DBType)
	assert.Equal(t, "未分類", cfg.Catalog.UncategorizedLabel)
	assert.Equal(t, 10, cfg.Catalog.MaxTagLength)
	assert.Equal(t, 10, cfg.Catalog.MaxCategoryLength)
	assert.Equal(t, 2000, cfg.Catalog.MaxTextLength)
	assert.Equal(t, "/auth/v1/user", cfg.Identity.UserPath)
	assert.Equal(t, 10*time.Second, cfg.Identity.Timeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadFromListsAreTrimmed(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DB_TYPE":          "memory",
		"ACCEPTED_ORIGINS": "http://localhost:3000, https://example.com ,",
		"VIDEO_CATEGORIES": "Tech, Music",
		"ADMIN_EMAIL":      "  admin@example.com ",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.AcceptedOrigins)
	assert.Equal(t, []string{"Tech", "Music"}, cfg.Catalog.Categories)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
}

func TestLoadFromRejectsBadDBType(t *testing.T) {
	_, err := LoadFrom(map[string]string{"DB_TYPE": "mysql"})
	require.Error(t, err)
}

func TestLoadFromPostgresNeedsURL(t *testing.T) {
	_, err := LoadFrom(map[string]string{"DB_TYPE": "postgres"})
	require.Error(t, err)

	cfg, err := LoadFrom(map[string]string{
		"DB_TYPE":      "postgres",
		"DATABASE_URL": "postgres://u:p@localhost:5432/videos",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/videos", cfg.DSN())
}

func TestSupabaseDSN(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DB_TYPE":              "supa",
		"SUPABASE_DB_HOST":     "db.example.co",
		"SUPABASE_DB_USER":     "postgres",
		"SUPABASE_DB_PASSWORD": "secret",
		"SUPABASE_DB_NAME":     "postgres",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"host=db.example.co user=postgres password=secret dbname=postgres port=5432 sslmode=require",
		cfg.DSN())
}

func TestSiteRoot(t *testing.T) {
	cfg := &Config{PublicSiteURL: "https://videos.example.com"}
	assert.Equal(t, "https://videos.example.com/", cfg.SiteRoot())

	cfg.PublicSiteURL = ""
	assert.Equal(t, "/", cfg.SiteRoot())

	cfg.PublicSiteURL = "https://videos.example.com/app"
	assert.Equal(t, "https://videos.example.com/app", cfg.SiteRoot())
}
