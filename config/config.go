package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Recommend RecommendConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatasetConfig selects where the product table is loaded from
type DatasetConfig struct {
	Source        string `mapstructure:"source"` // "csv" or "postgres"
	Path          string `mapstructure:"path"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	PostgresTable string `mapstructure:"postgres_table"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// RecommendConfig tunes result sizes of the scoring and summary endpoints
type RecommendConfig struct {
	TopN                 int `mapstructure:"top_n"`
	HistogramBins        int `mapstructure:"histogram_bins"`
	SummaryHistogramBins int `mapstructure:"summary_histogram_bins"`
	PreviewRows          int `mapstructure:"preview_rows"`
	TopK                 int `mapstructure:"top_k"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// IsProduction reports whether the server runs in production mode
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dermalens/")

	// Environment variable settings: DERMALENS_SERVER_PORT -> server.port
	v.SetEnvPrefix("DERMALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load(".env")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Dataset defaults
	v.SetDefault("dataset.source", "csv")
	v.SetDefault("dataset.path", "data/cosmetics.csv")
	v.SetDefault("dataset.postgres_dsn", "")
	v.SetDefault("dataset.postgres_table", "cosmetics")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Scoring defaults
	v.SetDefault("recommend.top_n", 5)
	v.SetDefault("recommend.histogram_bins", 20)
	v.SetDefault("recommend.summary_histogram_bins", 30)
	v.SetDefault("recommend.preview_rows", 10)
	v.SetDefault("recommend.top_k", 10)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Dataset.Source {
	case "csv":
		if config.Dataset.Path == "" {
			return fmt.Errorf("dataset path is required for csv source (set DERMALENS_DATASET_PATH)")
		}
	case "postgres":
		if config.Dataset.PostgresDSN == "" {
			return fmt.Errorf("postgres DSN is required for postgres source (set DERMALENS_DATASET_POSTGRES_DSN)")
		}
		if config.Dataset.PostgresTable == "" {
			return fmt.Errorf("postgres table is required for postgres source")
		}
	default:
		return fmt.Errorf("dataset source must be 'csv' or 'postgres', got: %s", config.Dataset.Source)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP must not be negative, got: %d", config.RateLimit.PerIP)
	}

	r := config.Recommend
	if r.TopN < 1 || r.HistogramBins < 1 || r.SummaryHistogramBins < 1 || r.PreviewRows < 0 || r.TopK < 1 {
		return fmt.Errorf("recommend settings must be positive: %+v", r)
	}

	if _, err := zerolog.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.Log.Level, err)
	}

	return nil
}
