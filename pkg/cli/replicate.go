package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"standardthought/pkg/db"
	"standardthought/pkg/replication"
)

var replicateCmd = LeafCommand{
	Use:   "replicate",
	Short: "Copy published articles and active guides into a local database",
	StrFlags: []StringFlag{
		{Name: "to", Usage: "target database type (sqlite or mysql)", Default: "sqlite"},
		{Name: "to-dsn", Usage: "target database DSN", Default: "./data/standardthought.db"},
	},
	IntFlags: []IntFlag{
		{Name: "workers", Usage: "number of concurrent batch workers", Default: 5},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		toFlag, _ := cmd.Flags().GetString("to")
		dsnFlag, _ := cmd.Flags().GetString("to-dsn")
		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			return fmt.Errorf("--workers must be positive, got %d", workers)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		source, closeSource, err := db.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("open source database: %w", err)
		}
		defer closeSource()

		target, err := db.OpenGorm(toFlag, dsnFlag)
		if err != nil {
			return fmt.Errorf("open target database: %w", err)
		}
		defer target.Close()

		return runReplicate(cmd, source, target, workers)
	},
}.Build()

func runReplicate(cmd *cobra.Command, source replication.Source, target replication.Target, workers int) error {
	r, err := replication.NewReplicator(replication.Config{
		Source:    source,
		Target:    target,
		BatchSize: 100,
		Workers:   workers,
	})
	if err != nil {
		return err
	}

	stats, err := r.Replicate(cmd.Context())
	if err != nil {
		return fmt.Errorf("replicate: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "articles: %d/%d inserted\nguides: %d/%d inserted\n",
		stats.ArticlesInserted, stats.Articles, stats.GuidesInserted, stats.Guides)
	return nil
}
