package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"standardthought/pkg/db"
	"standardthought/pkg/server"
	"standardthought/pkg/submit"
)

var serveCmd = LeafCommand{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd)
	},
}.Build()

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, closeStore, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeStore()

	gen, err := newGenerator(cfg, store)
	if err != nil {
		return err
	}

	notifier, err := submit.NewNotifier(cfg.Submit, cfg.Site.BaseURL, nil)
	if err != nil {
		return err
	}

	h := server.NewSitemapHandler(gen, store, notifier, cfg.Site.SitemapURL())
	srv := server.New(cfg.Server, server.Setup(cfg.Server, h))

	klog.Infof("Serving sitemap for %s", cfg.Site.BaseURL)
	return srv.Run(ctx)
}
