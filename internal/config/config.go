// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "murmur-dev-secret-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env              string  `mapstructure:"APP_ENV"`
	Port             string  `mapstructure:"PORT"`
	DatabaseURL      string  `mapstructure:"DATABASE_URL"`
	DBDriver         string  `mapstructure:"DB_DRIVER"`
	DBHost           string  `mapstructure:"DB_HOST"`
	DBPort           string  `mapstructure:"DB_PORT"`
	DBUser           string  `mapstructure:"DB_USER"`
	DBPassword       string  `mapstructure:"DB_PASSWORD"`
	DBName           string  `mapstructure:"DB_NAME"`
	DBSSLMode        string  `mapstructure:"DB_SSLMODE"`
	DBPath           string  `mapstructure:"DB_PATH"`
	DBMaxOpenConns   int     `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns   int     `mapstructure:"DB_MAX_IDLE_CONNS"`
	RedisURL         string  `mapstructure:"REDIS_URL"`
	JWTSecret        string  `mapstructure:"JWT_SECRET"`
	JWTTTLHours      int     `mapstructure:"JWT_TTL_HOURS"`
	AllowedOrigins   string  `mapstructure:"ALLOWED_ORIGINS"`
	UploadDir        string  `mapstructure:"UPLOAD_DIR"`
	UploadMaxSizeMB  int     `mapstructure:"UPLOAD_MAX_SIZE_MB"`
	FeatureFlags     string  `mapstructure:"FEATURE_FLAGS"`
	OTelEnabled      bool    `mapstructure:"OTEL_ENABLED"`
	OTelExporter     string  `mapstructure:"OTEL_EXPORTER"`
	OTelEndpoint     string  `mapstructure:"OTEL_ENDPOINT"`
	OTelSamplerRatio float64 `mapstructure:"OTEL_SAMPLER_RATIO"`
}

var defaults = map[string]any{
	"APP_ENV":            "development",
	"PORT":               "8375",
	"DATABASE_URL":       "",
	"DB_DRIVER":          "postgres",
	"DB_HOST":            "localhost",
	"DB_PORT":            "5432",
	"DB_USER":            "user",
	"DB_PASSWORD":        "password",
	"DB_NAME":            "murmur",
	"DB_SSLMODE":         "disable",
	"DB_PATH":            "murmur.db",
	"DB_MAX_OPEN_CONNS":  25,
	"DB_MAX_IDLE_CONNS":  5,
	"REDIS_URL":          "localhost:6379",
	"JWT_SECRET":         DefaultJWTSecret,
	"JWT_TTL_HOURS":      24 * 7,
	"ALLOWED_ORIGINS":    "http://localhost:5173,http://localhost:3000",
	"UPLOAD_DIR":         "./uploads",
	"UPLOAD_MAX_SIZE_MB": 5,
	"FEATURE_FLAGS":      "realtime_events=on",
	"OTEL_ENABLED":       false,
	"OTEL_EXPORTER":      "stdout",
	"OTEL_ENDPOINT":      "localhost:4318",
	"OTEL_SAMPLER_RATIO": 1.0,
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env != "" && env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read profile config 'config.%s.yml': %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
}

// IsProduction reports whether the app runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// UploadMaxBytes returns the upload ceiling in bytes.
func (c *Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxSizeMB) * 1024 * 1024
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTLHours <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}
	if c.UploadMaxSizeMB <= 0 {
		return errors.New("UPLOAD_MAX_SIZE_MB must be positive")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}

	if c.IsProduction() {
		if c.JWTSecret == DefaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBDriver == "postgres" && c.DatabaseURL == "" && (c.DBPassword == "password" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
