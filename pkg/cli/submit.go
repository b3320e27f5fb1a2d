package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"standardthought/pkg/pipeline"
	"standardthought/pkg/submit"
)

var submitCmd = LeafCommand{
	Use:   "submit",
	Short: "Generate the sitemap and notify search engines",
	BoolFlags: []BoolFlag{
		{Name: "indexnow", Default: true, Usage: "also submit every sitemap URL over IndexNow"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		indexNowFlag, _ := cmd.Flags().GetBool("indexnow")

		cfg, gen, closeStore, err := openGenerator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		notifier, err := submit.NewNotifier(cfg.Submit, cfg.Site.BaseURL, nil)
		if err != nil {
			return err
		}
		return runSubmit(cmd, gen, notifier, cfg.Site.SitemapURL(), indexNowFlag)
	},
}.Build()

func runSubmit(cmd *cobra.Command, gen *pipeline.Generator, notifier *submit.Notifier, sitemapURL string, indexNow bool) error {
	res, err := gen.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("generate sitemap: %w", err)
	}

	var urls []string
	if indexNow {
		urls = res.Locations()
	}
	report := notifier.Submit(cmd.Context(), sitemapURL, urls)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if report.IndexNowError != "" {
		return fmt.Errorf("indexnow: %s", report.IndexNowError)
	}
	return nil
}
