package config

import "time"

// Default returns the configuration used when no file or environment overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "release",
			AllowOrigins:    []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Site: SiteConfig{
			BaseURL:       "https://standardthought.com",
			SitemapPath:   "/sitemap.xml",
			ArticlePrefix: "/blog/",
			GuidePrefix:   "/guides/",
			Routes:        defaultRoutes(),
		},
		Scoring: ScoringConfig{
			HighValueKeywords:   defaultHighValueKeywords(),
			MediumValueKeywords: defaultMediumValueKeywords(),
			ArticleBaseline:     0.6,
			HighValuePriority:   0.9,
			MediumValuePriority: 0.75,
			GuidePriority:       0.8,
		},
		Database: DatabaseConfig{
			Backend:       BackendSQLite,
			DSN:           "./data/standardthought.db",
			MongoDatabase: "standardthought",
			MaxConns:      4,
		},
		Submit: SubmitConfig{
			IndexNowEndpoint:  "https://api.indexnow.org/indexnow",
			RequestsPerSecond: 1,
			Timeout:           15 * time.Second,
		},
		Audit: AuditConfig{
			UserAgent:         "Googlebot",
			Workers:           4,
			RequestsPerSecond: 2,
			Timeout:           20 * time.Second,
		},
	}
}

// Static routes in sitemap order: home, pillar pages, content indexes, resources, legal.
func defaultRoutes() []RouteConfig {
	return []RouteConfig{
		{Path: "/", ChangeFreq: "daily", Priority: 1.0},
		{Path: "/generational-wealth", ChangeFreq: "weekly", Priority: 0.95},
		{Path: "/financial-literacy", ChangeFreq: "weekly", Priority: 0.95},
		{Path: "/investing-101", ChangeFreq: "weekly", Priority: 0.95},
		{Path: "/blog", ChangeFreq: "daily", Priority: 0.85},
		{Path: "/guides", ChangeFreq: "weekly", Priority: 0.75},
		{Path: "/resources", ChangeFreq: "weekly", Priority: 0.7},
		{Path: "/about", ChangeFreq: "monthly", Priority: 0.6},
		{Path: "/contact", ChangeFreq: "monthly", Priority: 0.6},
		{Path: "/privacy-policy", ChangeFreq: "yearly", Priority: 0.3},
		{Path: "/terms-of-service", ChangeFreq: "yearly", Priority: 0.3},
	}
}

func defaultHighValueKeywords() []string {
	return []string{
		"generational wealth",
		"wealth building",
		"build wealth",
		"financial freedom",
		"financial literacy",
		"investing",
		"passive income",
		"net worth",
	}
}

func defaultMediumValueKeywords() []string {
	return []string{
		"budget",
		"credit",
		"debt",
		"savings",
		"retirement",
		"real estate",
		"side hustle",
		"homeownership",
		"taxes",
		"entrepreneur",
	}
}
