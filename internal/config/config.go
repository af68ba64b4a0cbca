package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig     `mapstructure:"server"`
	Environment string           `mapstructure:"environment"`
	Auth        AuthConfig       `mapstructure:"auth"`
	OpenSearch  OpenSearchConfig `mapstructure:"opensearch"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Pipeline    PipelineConfig   `mapstructure:"pipeline"`
	RateLimit   RateLimitConfig  `mapstructure:"ratelimit"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type OpenSearchConfig struct {
	URL           string        `mapstructure:"url"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	TLSSkipVerify bool          `mapstructure:"tls_skip_verify"`
	BulkTimeout   time.Duration `mapstructure:"bulk_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConns       int    `mapstructure:"max_conns"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// PipelineConfig tunes the buffering, batching, and replay behavior.
type PipelineConfig struct {
	QueueCapacity  int           `mapstructure:"queue_capacity"`
	BatchSize      int           `mapstructure:"batch_size"`
	FlushInterval  time.Duration `mapstructure:"flush_interval"`
	ReplayInterval time.Duration `mapstructure:"replay_interval"`
	ReplayPageSize int           `mapstructure:"replay_page_size"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("environment", "development")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("opensearch.url", "http://localhost:9200")
	v.SetDefault("opensearch.username", "")
	v.SetDefault("opensearch.password", "")
	v.SetDefault("opensearch.tls_skip_verify", false)
	v.SetDefault("opensearch.bulk_timeout", "30s")
	v.SetDefault("database.url", "postgres://localhost:5432/collector?sslmode=disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("pipeline.queue_capacity", 100000)
	v.SetDefault("pipeline.batch_size", 1000)
	v.SetDefault("pipeline.flush_interval", "10s")
	v.SetDefault("pipeline.replay_interval", "60s")
	v.SetDefault("pipeline.replay_page_size", 1000)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.redis_url", "redis://localhost:6379")
	v.SetDefault("ratelimit.requests", 10000)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/collector")
	}

	// Environment variables override
	v.SetEnvPrefix("COLLECTOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values that would break the pipeline at runtime.
func (c *Config) Validate() error {
	if c.Pipeline.QueueCapacity <= 0 {
		return fmt.Errorf("pipeline.queue_capacity must be positive, got %d", c.Pipeline.QueueCapacity)
	}
	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("pipeline.batch_size must be positive, got %d", c.Pipeline.BatchSize)
	}
	if c.Pipeline.FlushInterval <= 0 {
		return fmt.Errorf("pipeline.flush_interval must be positive, got %s", c.Pipeline.FlushInterval)
	}
	if c.Pipeline.ReplayInterval <= 0 {
		return fmt.Errorf("pipeline.replay_interval must be positive, got %s", c.Pipeline.ReplayInterval)
	}
	if c.Pipeline.ReplayPageSize <= 0 {
		return fmt.Errorf("pipeline.replay_page_size must be positive, got %d", c.Pipeline.ReplayPageSize)
	}
	return nil
}
