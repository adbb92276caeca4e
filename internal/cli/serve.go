package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"murmur/internal/bootstrap"
	"murmur/internal/config"
	"murmur/internal/middleware"
	"murmur/internal/server"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	port string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, rootOpts *RootOptions, opts *serveOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if opts.port != "" {
		cfg.Port = opts.port
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	shutdownTracing, err := bootstrap.InitTracing(cfg, rootOpts.Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server stopped: %w", err)
		}
	case <-ctx.Done():
		middleware.Logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		middleware.Logger.Error("server shutdown error", "error", err.Error())
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		middleware.Logger.Error("tracing shutdown error", "error", err.Error())
	}
	return nil
}
