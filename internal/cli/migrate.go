package cli

import (
	"fmt"

	"murmur/internal/bootstrap"
	"murmur/internal/config"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{Migrate: true})
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer func() { _ = sqlDB.Close() }()
			}

			printOK(cmd.OutOrStdout(), "schema is up to date (%s)", cfg.DBDriver)
			return nil
		},
	}
}
