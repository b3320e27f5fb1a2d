package sitemap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"standardthought/pkg/config"
	"standardthought/pkg/domain"
)

// Scorer assigns priorities to dynamically discovered content.
type Scorer interface {
	ScoreArticle(a domain.Article) (float64, domain.ChangeFreq)
	ScoreGuide(g domain.Guide) (float64, domain.ChangeFreq)
}

// Builder merges static routes, articles and guides into one ordered URL set.
type Builder struct {
	baseURL       string
	articlePrefix string
	guidePrefix   string
	routes        []domain.StaticRoute
	scorer        Scorer
}

// NewBuilder creates a builder for the given site. The base URL must be absolute
// so that every emitted location is absolute too.
func NewBuilder(site config.SiteConfig, scorer Scorer) (*Builder, error) {
	base := strings.TrimRight(site.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", site.BaseURL)
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}

	return &Builder{
		baseURL:       base,
		articlePrefix: withSlashes(site.ArticlePrefix, "/blog/"),
		guidePrefix:   withSlashes(site.GuidePrefix, "/guides/"),
		routes:        site.StaticRoutes(),
		scorer:        scorer,
	}, nil
}

func withSlashes(prefix, fallback string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return fallback
	}
	return "/" + prefix + "/"
}

// Build returns static routes, then articles in the given order, then guides in
// the given order. Locations are not deduplicated.
func (b *Builder) Build(articles []domain.Article, guides []domain.Guide, generatedAt time.Time) []domain.SitemapEntry {
	today := calendarDate(generatedAt)
	entries := make([]domain.SitemapEntry, 0, len(b.routes)+len(articles)+len(guides))

	for _, r := range b.routes {
		entries = append(entries, domain.SitemapEntry{
			Location:     b.baseURL + r.Path,
			LastModified: today,
			ChangeFreq:   r.ChangeFreq,
			Priority:     r.Priority,
		})
	}

	for _, a := range articles {
		slug := strings.TrimSpace(a.Slug)
		if slug == "" {
			slug = DeriveSlug(a.Title)
			klog.V(2).Infof("sitemap: article %q has no slug, using %q", a.Title, slug)
		}
		priority, freq := b.scorer.ScoreArticle(a)
		entries = append(entries, domain.SitemapEntry{
			Location:     b.baseURL + b.articlePrefix + url.PathEscape(slug),
			LastModified: lastModified(a.LastModified(), today),
			ChangeFreq:   freq,
			Priority:     priority,
		})
	}

	for _, g := range guides {
		slug := DeriveSlug(g.Title)
		if slug == "" {
			klog.Warningf("sitemap: guide title %q yields an empty slug", g.Title)
		}
		priority, freq := b.scorer.ScoreGuide(g)
		entries = append(entries, domain.SitemapEntry{
			Location:     b.baseURL + b.guidePrefix + slug,
			LastModified: lastModified(g.UpdatedAt, today),
			ChangeFreq:   freq,
			Priority:     priority,
		})
	}

	return entries
}

// BaseURL returns the base URL every location starts with.
func (b *Builder) BaseURL() string {
	return b.baseURL
}

func lastModified(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return calendarDate(t)
}

// calendarDate truncates t to midnight UTC of its UTC calendar day.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
