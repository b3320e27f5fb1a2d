package db

import (
	"context"
	"errors"

	"standardthought/pkg/domain"
)

// Table (and collection) names shared by every backend.
const (
	articlesTable = "blog_posts"
	guidesTable   = "guides"
	settingsTable = "seo_settings"
)

// ErrNotFound is returned when a requested page setting does not exist.
var ErrNotFound = errors.New("page setting not found")

// ContentSource reads the records a sitemap is built from.
type ContentSource interface {
	// FetchPublishedArticles returns published articles, newest first by creation time.
	FetchPublishedArticles(ctx context.Context) ([]domain.Article, error)
	// FetchActiveGuides returns active guides by ascending sort order.
	FetchActiveGuides(ctx context.Context) ([]domain.Guide, error)
}

// SettingsStore persists rows of the SEO settings table, one per page type.
type SettingsStore interface {
	UpsertPageSetting(ctx context.Context, setting domain.PageSetting) error
	GetPageSetting(ctx context.Context, pageType string) (*domain.PageSetting, error)
}

// Store is implemented by every database backend.
type Store interface {
	ContentSource
	SettingsStore

	// EnsureSchema creates what this service owns (the settings table and its
	// unique key) when it is missing.
	EnsureSchema(ctx context.Context) error
}
