// Package bootstrap connects the process-wide dependencies shared by the
// server and the CLI commands.
package bootstrap

import (
	"context"
	"fmt"

	"murmur/internal/cache"
	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceName identifies this process in traces and metrics.
const ServiceName = "murmur-api"

// Options control runtime initialization behavior.
type Options struct {
	// Migrate forces a schema migration; outside production Connect
	// already migrates.
	Migrate bool
}

// InitRuntime connects to DB and Redis. The Redis client is nil when Redis
// is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.Migrate && cfg.IsProduction() {
		if err := database.Migrate(db); err != nil {
			return nil, nil, err
		}
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// InitTracing installs the tracer provider described by cfg and returns its
// shutdown function.
func InitTracing(cfg *config.Config, version string) (func(context.Context) error, error) {
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.OTelEnabled,
		Exporter:       cfg.OTelExporter,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SamplerRatio:   cfg.OTelSamplerRatio,
	})
}
