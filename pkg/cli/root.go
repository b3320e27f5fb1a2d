// Package cli implements the standardthought command tree.
package cli

import (
	"flag"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var rootCmd = &cobra.Command{
	Use:           "standardthought",
	Short:         "Sitemap generation and search engine submission for standardthought.com",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)
	rootCmd.PersistentFlags().String("config", "", "path to config file (default $CONFIG_PATH or config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(replicateCmd)
}

// Execute runs the root command.
func Execute() error {
	defer klog.Flush()
	return rootCmd.Execute()
}
