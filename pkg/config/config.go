package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"standardthought/pkg/domain"
)

// Config is the full service configuration. It is built once by Load and passed
// explicitly to every constructor that needs part of it.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Site     SiteConfig     `yaml:"site"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Database DatabaseConfig `yaml:"database"`
	Submit   SubmitConfig   `yaml:"submit"`
	Audit    AuditConfig    `yaml:"audit"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"` // debug, release, test
	AllowOrigins    []string      `yaml:"allow_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SiteConfig describes the public site the sitemap is generated for.
type SiteConfig struct {
	BaseURL       string        `yaml:"base_url"`
	SitemapPath   string        `yaml:"sitemap_path"`
	ArticlePrefix string        `yaml:"article_prefix"`
	GuidePrefix   string        `yaml:"guide_prefix"`
	Routes        []RouteConfig `yaml:"routes"`
}

type RouteConfig struct {
	Path       string  `yaml:"path"`
	ChangeFreq string  `yaml:"changefreq"`
	Priority   float64 `yaml:"priority"`
}

// ScoringConfig holds the keyword tiers and the priorities they map to.
type ScoringConfig struct {
	HighValueKeywords   []string `yaml:"high_value_keywords"`
	MediumValueKeywords []string `yaml:"medium_value_keywords"`
	ArticleBaseline     float64  `yaml:"article_baseline"`
	HighValuePriority   float64  `yaml:"high_value_priority"`
	MediumValuePriority float64  `yaml:"medium_value_priority"`
	GuidePriority       float64  `yaml:"guide_priority"`
}

type DatabaseConfig struct {
	Backend string `yaml:"backend"` // postgres, supabase, mongo, sqlite, mysql
	DSN     string `yaml:"dsn"`

	SupabaseURL      string `yaml:"supabase_url"`
	SupabaseKey      string `yaml:"supabase_key"`
	SupabasePassword string `yaml:"supabase_password"`

	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	MaxConns int32 `yaml:"max_conns"`
	// Migrate creates the settings table (and, for sqlite, the content tables) on startup.
	Migrate bool `yaml:"migrate"`
}

type SubmitConfig struct {
	// PingEndpoints are URL templates; %s is replaced by the escaped sitemap URL.
	PingEndpoints       []string      `yaml:"ping_endpoints"`
	IndexNowEndpoint    string        `yaml:"indexnow_endpoint"`
	IndexNowKey         string        `yaml:"indexnow_key"`
	IndexNowKeyLocation string        `yaml:"indexnow_key_location"`
	RequestsPerSecond   float64       `yaml:"requests_per_second"`
	Timeout             time.Duration `yaml:"timeout"`
}

type AuditConfig struct {
	UserAgent         string        `yaml:"user_agent"`
	Workers           int           `yaml:"workers"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMongo    = "mongo"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
)

// Load builds the configuration from defaults, the YAML file at path and the
// environment, in that order of precedence (environment wins).
//
// An empty path falls back to CONFIG_PATH and then to config.yaml; a missing
// file is only an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Mode, "SERVER_MODE")
	setString(&cfg.Site.BaseURL, "SITE_BASE_URL")

	setString(&cfg.Database.Backend, "DB_BACKEND")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.Database.SupabaseURL, "SUPABASE_URL")
	setString(&cfg.Database.SupabaseKey, "SUPABASE_KEY")
	setString(&cfg.Database.SupabasePassword, "SUPABASE_DB_PASSWORD")
	setString(&cfg.Database.MongoURI, "MONGO_URI")
	setString(&cfg.Database.MongoDatabase, "MONGO_DATABASE")

	setString(&cfg.Submit.IndexNowKey, "INDEXNOW_KEY")
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	if err := validateBaseURL(c.Site.BaseURL); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Site.SitemapPath, "/") {
		return fmt.Errorf("site.sitemap_path must start with /: %q", c.Site.SitemapPath)
	}

	for i, r := range c.Site.Routes {
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("site.routes[%d]: path must start with /: %q", i, r.Path)
		}
		if !domain.ChangeFreq(r.ChangeFreq).Valid() {
			return fmt.Errorf("site.routes[%d]: invalid changefreq %q", i, r.ChangeFreq)
		}
		if !validPriority(r.Priority) {
			return fmt.Errorf("site.routes[%d]: priority %.2f out of range", i, r.Priority)
		}
	}

	s := c.Scoring
	for name, p := range map[string]float64{
		"article_baseline":      s.ArticleBaseline,
		"high_value_priority":   s.HighValuePriority,
		"medium_value_priority": s.MediumValuePriority,
		"guide_priority":        s.GuidePriority,
	} {
		if !validPriority(p) {
			return fmt.Errorf("scoring.%s: priority %.2f out of range", name, p)
		}
	}

	switch c.Database.Backend {
	case BackendPostgres, BackendSQLite, BackendMySQL:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for backend %q", c.Database.Backend)
		}
	case BackendSupabase:
		if c.Database.DSN == "" && (c.Database.SupabaseURL == "" || c.Database.SupabaseKey == "") {
			return errors.New("database: supabase backend needs dsn or supabase_url and supabase_key")
		}
	case BackendMongo:
		if c.Database.MongoURI == "" || c.Database.MongoDatabase == "" {
			return errors.New("database: mongo backend needs mongo_uri and mongo_database")
		}
	default:
		return fmt.Errorf("database.backend: unknown backend %q", c.Database.Backend)
	}

	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL: %q", raw)
	}
	return nil
}

func validPriority(p float64) bool {
	return p >= 0 && p <= 1
}

// BaseURLTrimmed returns the site base URL without a trailing slash.
func (s SiteConfig) BaseURLTrimmed() string {
	return strings.TrimRight(s.BaseURL, "/")
}

// SitemapURL returns the public absolute URL of the sitemap document.
func (s SiteConfig) SitemapURL() string {
	return s.BaseURLTrimmed() + s.SitemapPath
}

// StaticRoutes converts the configured routes into domain values, keeping their order.
func (s SiteConfig) StaticRoutes() []domain.StaticRoute {
	routes := make([]domain.StaticRoute, 0, len(s.Routes))
	for _, r := range s.Routes {
		routes = append(routes, domain.StaticRoute{
			Path:       r.Path,
			ChangeFreq: domain.ChangeFreq(r.ChangeFreq),
			Priority:   r.Priority,
		})
	}
	return routes
}
