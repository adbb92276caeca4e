package cli

import (
	"fmt"

	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/seed"

	"github.com/spf13/cobra"
)

type seedOptions struct {
	users    int
	posts    int
	scenario string
	clean    bool
	fastHash bool
	randSeed int64
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo data",
		Long: `Populate the database with demo data.

By default a random graph of users, posts, follows, likes and comments is
generated. With --scenario a hand-written YAML data set is loaded instead.
Every generated user has the password "` + seed.DefaultPassword + `".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.users, "users", 50, "number of users to create")
	cmd.Flags().IntVar(&opts.posts, "posts", 200, "number of posts to create")
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "YAML scenario file to load instead of random data")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "delete existing data first")
	cmd.Flags().BoolVar(&opts.fastHash, "fast", false, "hash passwords at the minimum bcrypt cost")
	cmd.Flags().Int64Var(&opts.randSeed, "rand-seed", 0, "seed for reproducible random data")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *seedOptions) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to seed a %s database", cfg.Env)
	}

	var scenario *seed.Scenario
	if opts.scenario != "" {
		if scenario, err = seed.LoadScenario(opts.scenario); err != nil {
			return err
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}

	if opts.clean {
		if err := seed.ClearAll(db); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		printWarn(out, "existing data removed")
	}

	seedOpts := seed.Options{
		Users:    opts.users,
		Posts:    opts.posts,
		FastHash: opts.fastHash,
		RandSeed: opts.randSeed,
	}

	var sum *seed.Summary
	if scenario != nil {
		sum, err = scenario.Apply(db, seedOpts)
	} else {
		sum, err = seed.Seed(db, seedOpts)
	}
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	if scenario != nil && scenario.Name != "" {
		printOK(out, "scenario %q loaded", scenario.Name)
	} else {
		printOK(out, "database seeded")
	}
	printSummary(out, sum)
	return nil
}
