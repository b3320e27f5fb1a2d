package replication

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/klog/v2"

	"standardthought/pkg/domain"
)

// Source is the backend content is copied from.
type Source interface {
	FetchPublishedArticles(ctx context.Context) ([]domain.Article, error)
	FetchActiveGuides(ctx context.Context) ([]domain.Guide, error)
}

// Target is the backend content is copied into.
type Target interface {
	EnsureSchema(ctx context.Context) error
	ExistingArticleSlugs(ctx context.Context, slugs []string) (map[string]bool, error)
	ExistingGuideTitles(ctx context.Context, titles []string) (map[string]bool, error)
	InsertArticles(ctx context.Context, articles []domain.Article) error
	InsertGuides(ctx context.Context, guides []domain.Guide) error
}

// Config wires the replication dependencies.
type Config struct {
	Source    Source
	Target    Target
	BatchSize int
	Workers   int
}

// Stats counts what a replication run read and inserted.
type Stats struct {
	Articles         int
	ArticlesInserted int
	Guides           int
	GuidesInserted   int
}

// Replicator copies published content from one backend into another, typically
// from the production database into a local sqlite file for development.
//
// Records already present in the target are skipped; nothing is updated or deleted.
type Replicator struct {
	source    Source
	target    Target
	batchSize int
	workers   int
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Replicator{
		source:    cfg.Source,
		target:    cfg.Target,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}, nil
}

// Replicate copies articles and then guides.
func (r *Replicator) Replicate(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := r.target.EnsureSchema(ctx); err != nil {
		return stats, fmt.Errorf("ensure target schema: %w", err)
	}

	articles, err := r.source.FetchPublishedArticles(ctx)
	if err != nil {
		return stats, fmt.Errorf("read articles: %w", err)
	}
	stats.Articles = len(articles)
	klog.Infof("Loaded %d articles from source, processing in batches...", len(articles))

	stats.ArticlesInserted, err = processBatches(ctx, r, articles, r.replicateArticles)
	if err != nil {
		return stats, err
	}

	guides, err := r.source.FetchActiveGuides(ctx)
	if err != nil {
		return stats, fmt.Errorf("read guides: %w", err)
	}
	stats.Guides = len(guides)

	stats.GuidesInserted, err = processBatches(ctx, r, guides, r.replicateGuides)
	if err != nil {
		return stats, err
	}

	klog.Infof("Replication complete: inserted %d/%d articles, %d/%d guides",
		stats.ArticlesInserted, stats.Articles, stats.GuidesInserted, stats.Guides)
	return stats, nil
}

// processBatches runs process over fixed-size batches on the replicator's
// workers and returns the total inserted. The first error stops the run.
func processBatches[T any](ctx context.Context, r *Replicator, items []T, process func(context.Context, []T) (int, error)) (int, error) {
	type batchJob struct {
		batch      []T
		start, end int
	}
	type batchResult struct {
		inserted int
		err      error
	}

	numBatches := (len(items) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(items); start += r.batchSize {
		end := min(start+r.batchSize, len(items))
		jobs <- batchJob{batch: items[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					results <- batchResult{err: ctx.Err()}
					continue
				}
				inserted, err := process(ctx, job.batch)
				if err != nil {
					err = fmt.Errorf("batch [%d:%d]: %w", job.start, job.end, err)
				}
				results <- batchResult{inserted: inserted, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Drain every result so no worker blocks; report the first error.
	total := 0
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		total += res.inserted
	}
	return total, firstErr
}

// replicateArticles inserts the articles of a batch whose slug is not yet in
// the target. Articles without a slug cannot be matched and are skipped.
func (r *Replicator) replicateArticles(ctx context.Context, batch []domain.Article) (int, error) {
	slugs := make([]string, 0, len(batch))
	for _, a := range batch {
		if a.Slug != "" {
			slugs = append(slugs, a.Slug)
		}
	}
	if len(slugs) == 0 {
		return 0, nil
	}

	existing, err := r.target.ExistingArticleSlugs(ctx, slugs)
	if err != nil {
		return 0, err
	}

	toInsert := make([]domain.Article, 0, len(batch))
	for _, a := range batch {
		if a.Slug == "" || existing[a.Slug] {
			continue
		}
		existing[a.Slug] = true
		toInsert = append(toInsert, a)
	}
	if len(toInsert) == 0 {
		return 0, nil
	}

	if err := r.target.InsertArticles(ctx, toInsert); err != nil {
		return 0, err
	}
	klog.V(1).Infof("Inserted %d articles", len(toInsert))
	return len(toInsert), nil
}

// replicateGuides inserts the guides of a batch whose title is not yet in the target.
func (r *Replicator) replicateGuides(ctx context.Context, batch []domain.Guide) (int, error) {
	titles := make([]string, 0, len(batch))
	for _, g := range batch {
		titles = append(titles, g.Title)
	}

	existing, err := r.target.ExistingGuideTitles(ctx, titles)
	if err != nil {
		return 0, err
	}

	toInsert := make([]domain.Guide, 0, len(batch))
	for _, g := range batch {
		if existing[g.Title] {
			continue
		}
		existing[g.Title] = true
		toInsert = append(toInsert, g)
	}
	if len(toInsert) == 0 {
		return 0, nil
	}

	if err := r.target.InsertGuides(ctx, toInsert); err != nil {
		return 0, err
	}
	return len(toInsert), nil
}
