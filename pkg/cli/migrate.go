package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"standardthought/pkg/db"
)

var migrateCmd = LeafCommand{
	Use:   "migrate",
	Short: "Create the tables and indexes this service writes to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		cfg.Database.Migrate = true
		_, closeStore, err := db.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", cfg.Database.Backend, err)
		}
		closeStore()

		fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.Database.Backend)
		return nil
	},
}.Build()
