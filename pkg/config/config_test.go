package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"standardthought/pkg/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  base_url: https://staging.standardthought.com/
scoring:
  high_value_keywords: ["wealth"]
database:
  backend: postgres
  dsn: postgres://localhost/st
submit:
  timeout: 3s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.standardthought.com", cfg.Site.BaseURLTrimmed())
	assert.Equal(t, "https://staging.standardthought.com/sitemap.xml", cfg.Site.SitemapURL())
	assert.Equal(t, []string{"wealth"}, cfg.Scoring.HighValueKeywords)
	assert.NotEmpty(t, cfg.Scoring.MediumValueKeywords, "unset lists keep their defaults")
	assert.Equal(t, BackendPostgres, cfg.Database.Backend)
	assert.Equal(t, 3*time.Second, cfg.Submit.Timeout)
	assert.Equal(t, 0.8, cfg.Scoring.GuidePriority)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	path := writeConfig(t, "site:\n  base_url: https://file.example.com\n")
	t.Setenv("SITE_BASE_URL", "https://env.example.com")
	t.Setenv("DB_BACKEND", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Site.BaseURL)
	assert.Equal(t, BackendMongo, cfg.Database.Backend)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.MongoURI)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MissingImplicitFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://standardthought.com", cfg.Site.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"relative base url", func(c *Config) { c.Site.BaseURL = "/blog" }},
		{"base url without host", func(c *Config) { c.Site.BaseURL = "https://" }},
		{"ftp base url", func(c *Config) { c.Site.BaseURL = "ftp://example.com" }},
		{"sitemap path", func(c *Config) { c.Site.SitemapPath = "sitemap.xml" }},
		{"route changefreq", func(c *Config) { c.Site.Routes[0].ChangeFreq = "fortnightly" }},
		{"route priority", func(c *Config) { c.Site.Routes[0].Priority = 1.5 }},
		{"scoring priority", func(c *Config) { c.Scoring.GuidePriority = -0.1 }},
		{"unknown backend", func(c *Config) { c.Database.Backend = "redis" }},
		{"postgres without dsn", func(c *Config) {
			c.Database.Backend = BackendPostgres
			c.Database.DSN = ""
		}},
		{"supabase without credentials", func(c *Config) {
			c.Database.Backend = BackendSupabase
			c.Database.DSN = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestStaticRoutesKeepOrder(t *testing.T) {
	routes := Default().Site.StaticRoutes()
	require.NotEmpty(t, routes)

	assert.Equal(t, domain.StaticRoute{Path: "/", ChangeFreq: domain.ChangeFreqDaily, Priority: 1.0}, routes[0])
	last := routes[len(routes)-1]
	assert.Equal(t, domain.ChangeFreqYearly, last.ChangeFreq)
	assert.Equal(t, 0.3, last.Priority)
}
