package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"standardthought/pkg/domain"
	"standardthought/pkg/metrics"
	"standardthought/pkg/sitemap"
)

// ContentSource reads the records the sitemap is built from.
type ContentSource interface {
	FetchPublishedArticles(ctx context.Context) ([]domain.Article, error)
	FetchActiveGuides(ctx context.Context) ([]domain.Guide, error)
}

// SettingsSaver stores generated documents.
type SettingsSaver interface {
	UpsertPageSetting(ctx context.Context, setting domain.PageSetting) error
}

// Result is the output of one generation run.
type Result struct {
	Sitemap     []byte
	Index       []byte
	Entries     []domain.SitemapEntry
	GeneratedAt time.Time

	// PersistErr is set by Run when storing the documents failed.
	PersistErr error
}

// Document returns the index when index is true and the sitemap otherwise.
func (r *Result) Document(index bool) []byte {
	if index {
		return r.Index
	}
	return r.Sitemap
}

// Locations returns the location of every entry, in sitemap order.
func (r *Result) Locations() []string {
	locs := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		locs = append(locs, e.Location)
	}
	return locs
}

// Generator runs the fetch, build, serialize and persist stages in sequence.
type Generator struct {
	source     ContentSource
	saver      SettingsSaver
	builder    *sitemap.Builder
	sitemapURL string
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the clock used for the generation date.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a generator. saver may be nil, in which case nothing is persisted.
func NewGenerator(source ContentSource, saver SettingsSaver, builder *sitemap.Builder, sitemapURL string, opts ...Option) *Generator {
	g := &Generator{
		source:     source,
		saver:      saver,
		builder:    builder,
		sitemapURL: sitemapURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate fetches content and serializes the sitemap and its index.
// Any fetch or serialization error aborts the run; no partial document is produced.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := g.generate(ctx)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordGeneration(status, time.Since(start).Seconds())
	return res, err
}

func (g *Generator) generate(ctx context.Context) (*Result, error) {
	generatedAt := g.now().UTC()

	articles, err := g.source.FetchPublishedArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	guides, err := g.source.FetchActiveGuides(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch guides: %w", err)
	}

	entries := g.builder.Build(articles, guides, generatedAt)
	metrics.SetEntryCounts(len(entries)-len(articles)-len(guides), len(articles), len(guides))

	sitemapXML, err := sitemap.MarshalSitemap(entries)
	if err != nil {
		return nil, fmt.Errorf("serialize sitemap: %w", err)
	}

	indexXML, err := sitemap.MarshalIndex(g.sitemapURL, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("serialize sitemap index: %w", err)
	}

	klog.V(1).Infof("Generated sitemap: %d articles, %d guides, %d entries", len(articles), len(guides), len(entries))

	return &Result{
		Sitemap:     sitemapXML,
		Index:       indexXML,
		Entries:     entries,
		GeneratedAt: generatedAt,
	}, nil
}

// Persist upserts both documents. Each upsert is attempted even if the other fails.
func (g *Generator) Persist(ctx context.Context, res *Result) error {
	if g.saver == nil {
		return nil
	}

	var errs []error
	for _, setting := range settingsFor(res) {
		if err := g.saver.UpsertPageSetting(ctx, setting); err != nil {
			metrics.RecordPersistFailure(setting.PageType)
			errs = append(errs, fmt.Errorf("persist %s: %w", setting.PageType, err))
		}
	}
	return errors.Join(errs...)
}

// Run generates and persists. A persistence failure is logged and recorded on
// the result, but the result is still returned.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}

	if err := g.Persist(ctx, res); err != nil {
		klog.Errorf("Failed to store generated sitemap: %v", err)
		res.PersistErr = err
	}
	return res, nil
}

func settingsFor(res *Result) []domain.PageSetting {
	return []domain.PageSetting{
		{
			PageType:    domain.PageTypeSitemap,
			Title:       "Sitemap XML",
			Description: string(res.Sitemap),
			Keywords:    fmt.Sprintf("sitemap, %d urls", len(res.Entries)),
			IsActive:    true,
			UpdatedAt:   res.GeneratedAt,
		},
		{
			PageType:    domain.PageTypeSitemapIndex,
			Title:       "Sitemap Index",
			Description: string(res.Index),
			Keywords:    "sitemap index",
			IsActive:    true,
			UpdatedAt:   res.GeneratedAt,
		},
	}
}
