package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"standardthought/pkg/config"
	"standardthought/pkg/db"
	"standardthought/pkg/pipeline"
	"standardthought/pkg/scoring"
	"standardthought/pkg/sitemap"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newGenerator wires the scorer, builder and store into a generator.
func newGenerator(cfg *config.Config, store db.Store) (*pipeline.Generator, error) {
	builder, err := sitemap.NewBuilder(cfg.Site, scoring.NewScorer(cfg.Scoring))
	if err != nil {
		return nil, err
	}
	return pipeline.NewGenerator(store, store, builder, cfg.Site.SitemapURL()), nil
}

// openGenerator loads config, opens the store and builds a generator.
// The returned func closes the store.
func openGenerator(ctx context.Context, cmd *cobra.Command) (*config.Config, *pipeline.Generator, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	store, closeStore, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	gen, err := newGenerator(cfg, store)
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}
	return cfg, gen, closeStore, nil
}
