package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the catalog backend.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	ReadTimeout  int    `env:"READ_TIMEOUT_SECONDS" envDefault:"180"`
	WriteTimeout int    `env:"WRITE_TIMEOUT_SECONDS" envDefault:"180"`
	IdleTimeout  int    `env:"IDLE_TIMEOUT_SECONDS" envDefault:"180"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"console"`

	DBType          string `env:"DB_TYPE" envDefault:"postgres"`
	DatabaseURL     string `env:"DATABASE_URL"`
	DatabaseReadURL string `env:"DATABASE_READ_URL"`
	AutoMigrate     bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	SupabaseDB      SupabaseDB

	GenerateModels       bool `env:"GENERATE_MODELS" envDefault:"false"`
	GenerateColumnReport bool `env:"GENERATE_COLUMN_REPORT" envDefault:"false"`

	AcceptedOrigins []string `env:"ACCEPTED_ORIGINS" envSeparator:","`
	AdminEmail      string   `env:"ADMIN_EMAIL"`
	PublicSiteURL   string   `env:"PUBLIC_SITE_URL" envDefault:"/"`

	Identity Identity
	Catalog  Catalog
}

// SupabaseDB are the discrete connection pieces used when DB_TYPE=supa.
type SupabaseDB struct {
	Host     string `env:"SUPABASE_DB_HOST"`
	User     string `env:"SUPABASE_DB_USER"`
	Password string `env:"SUPABASE_DB_PASSWORD"`
	Name     string `env:"SUPABASE_DB_NAME"`
	Port     string `env:"SUPABASE_DB_PORT" envDefault:"5432"`
}

// Identity configures how bearer tokens are resolved and how the
// authorization code callback is exchanged.
type Identity struct {
	URL          string        `env:"IDP_URL"`
	APIKey       string        `env:"IDP_API_KEY"`
	UserPath     string        `env:"IDP_USER_PATH" envDefault:"/auth/v1/user"`
	TokenURL     string        `env:"IDP_TOKEN_URL"`
	ClientID     string        `env:"IDP_CLIENT_ID"`
	ClientSecret string        `env:"IDP_CLIENT_SECRET"`
	RedirectURL  string        `env:"IDP_REDIRECT_URL"`
	PublicKey    string        `env:"IDP_PUBLIC_KEY"`
	JWKSURL      string        `env:"IDP_JWKS_URL"`
	Issuer       string        `env:"IDP_ISSUER"`
	Timeout      time.Duration `env:"IDP_TIMEOUT" envDefault:"10s"`
}

// Catalog holds the field rules for video entries.
type Catalog struct {
	Categories         []string `env:"VIDEO_CATEGORIES" envSeparator:","`
	UncategorizedLabel string   `env:"VIDEO_UNCATEGORIZED_LABEL" envDefault:"未分類"`
	MaxTagLength       int      `env:"VIDEO_MAX_TAG_LENGTH" envDefault:"10"`
	MaxCategoryLength  int      `env:"VIDEO_MAX_CATEGORY_LENGTH" envDefault:"10"`
	MaxTextLength      int      `env:"VIDEO_MAX_TEXT_LENGTH" envDefault:"2000"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.DBType = strings.ToLower(strings.TrimSpace(cfg.DBType))
	switch cfg.DBType {
	case "postgres", "supa", "memory":
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}

	if cfg.DBType == "postgres" && strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE is postgres")
	}
	if cfg.Catalog.MaxTagLength <= 0 || cfg.Catalog.MaxCategoryLength <= 0 || cfg.Catalog.MaxTextLength <= 0 {
		return nil, fmt.Errorf("video field limits must be positive")
	}

	cfg.AcceptedOrigins = trimAll(cfg.AcceptedOrigins)
	cfg.Catalog.Categories = trimAll(cfg.Catalog.Categories)
	cfg.AdminEmail = strings.TrimSpace(cfg.AdminEmail)

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%s", c.Port)
}

// DSN returns the write connection string for the configured database.
func (c *Config) DSN() string {
	if c.DBType == "supa" {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			c.SupabaseDB.Host,
			c.SupabaseDB.User,
			c.SupabaseDB.Password,
			c.SupabaseDB.Name,
			c.SupabaseDB.Port,
		)
	}
	return c.DatabaseURL
}

// SiteRoot returns the absolute or relative URL visitors are sent back to
// after the auth callback.
func (c *Config) SiteRoot() string {
	root := strings.TrimSpace(c.PublicSiteURL)
	if root == "" {
		return "/"
	}
	if u, err := url.Parse(root); err == nil && u.Path == "" {
		u.Path = "/"
		return u.String()
	}
	return root
}

// IsDevelopment reports whether logs should go to the console writer.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.LogFormat, "console")
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
