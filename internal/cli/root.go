// Package cli implements the murmur command line.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	NoColor bool
	Version string
}

// NewRootCommand creates the murmur root command. Without a subcommand it
// runs the API server.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}
	serve := NewServeCommand(opts)

	cmd := &cobra.Command{
		Use:     "murmur",
		Short:   "Murmur social API",
		Long:    "Murmur serves the social API (users, posts, likes, comments, follows and uploads) and manages its database.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.NoColor {
				color.NoColor = true
			}
		},
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
