package config

import (
	"errors"
	"time"
)

// Config represents the reader service configuration
type Config struct {
	Reader   ReaderConfig   `mapstructure:"reader"`
	Source   SourceConfig   `mapstructure:"source"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Nats     NatsConfig     `mapstructure:"nats"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Health   HealthConfig   `mapstructure:"health"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ReaderConfig holds the search and selection tunables
type ReaderConfig struct {
	// Actor is the identity later used when acting on found candidates.
	Actor string `mapstructure:"actor"`

	// DefaultLimit caps how many items one plan may fetch.
	DefaultLimit int64 `mapstructure:"default_limit"`

	// MinCopyCount is the smallest duplicate group worth processing.
	MinCopyCount int `mapstructure:"min_copy_count"`

	// ShiftPart divides a donor's child count to get the number of
	// most-reactive children skipped before selection.
	ShiftPart int64 `mapstructure:"shift_copy_comments_part"`

	// Donor child score bounds, inclusive.
	MinDonorScore int64 `mapstructure:"min_donor_score"`
	MaxDonorScore int64 `mapstructure:"max_donor_score"`

	// GroupCacheTTL bounds how long duplicate-group searches are memoized.
	GroupCacheTTL  time.Duration `mapstructure:"group_cache_ttl"`
	GroupCacheSize int           `mapstructure:"group_cache_size"`

	// Partitions get an attention request at startup, before any external
	// producer publishes one.
	Partitions []string `mapstructure:"partitions"`
}

// SourceConfig points at the content-source gateway
type SourceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig represents the checkpoint/lease store configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MongoConfig represents the result store configuration
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	CappedSize int64  `mapstructure:"capped_size"`
}

// PostgresConfig represents the acted-record archive configuration
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// NatsConfig represents the NATS queue backend configuration
type NatsConfig struct {
	URL string `mapstructure:"url"`
}

// QueueConfig selects the notification transport
type QueueConfig struct {
	Backend string `mapstructure:"backend"`
}

// ArchiveConfig tunes the acted-record migration loop
type ArchiveConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Lookback  time.Duration `mapstructure:"lookback"`
	BatchSize int           `mapstructure:"batch_size"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// HealthConfig represents the health endpoint configuration
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Reader.Actor == "" {
		return errors.New("reader.actor is required")
	}
	if c.Reader.DefaultLimit <= 0 {
		return errors.New("reader.default_limit must be positive")
	}
	if c.Reader.MinCopyCount < 2 {
		return errors.New("reader.min_copy_count must be at least 2")
	}
	if c.Reader.ShiftPart <= 0 {
		return errors.New("reader.shift_copy_comments_part must be positive")
	}
	if c.Reader.MinDonorScore > c.Reader.MaxDonorScore {
		return errors.New("reader.min_donor_score must not exceed reader.max_donor_score")
	}
	if c.Source.BaseURL == "" {
		return errors.New("source.base_url is required")
	}
	if c.Redis.Host == "" {
		return errors.New("redis.host is required")
	}
	if c.Mongo.URI == "" {
		return errors.New("mongo.uri is required")
	}
	if c.Mongo.Database == "" {
		return errors.New("mongo.database is required")
	}
	if !isValidQueueBackend(c.Queue.Backend) {
		return errors.New("queue.backend must be one of: redis, nats")
	}
	if c.Queue.Backend == "nats" && c.Nats.URL == "" {
		return errors.New("nats.url is required when queue.backend is nats")
	}
	if c.Archive.Enabled && c.Postgres.Host == "" {
		return errors.New("postgres.host is required when archive.enabled")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	return nil
}

// isValidQueueBackend checks if the queue backend is supported
func isValidQueueBackend(backend string) bool {
	switch backend {
	case "redis", "nats":
		return true
	default:
		return false
	}
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	return &Config{
		Reader: ReaderConfig{
			Actor:          "reader-1",
			DefaultLimit:   100,
			MinCopyCount:   3,
			ShiftPart:      10,
			MinDonorScore:  5,
			MaxDonorScore:  500,
			GroupCacheTTL:  5 * time.Minute,
			GroupCacheSize: 1000,
		},
		Source: SourceConfig{
			BaseURL: "http://localhost:8090",
			Timeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "reader",
			Collection: "comments",
			CappedSize: 256 * 1024 * 1024,
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "reader_archive",
			User:     "reader",
			Password: "",
			MaxConns: 10,
		},
		Nats: NatsConfig{
			URL: "nats://localhost:4222",
		},
		Queue: QueueConfig{
			Backend: "redis",
		},
		Archive: ArchiveConfig{
			Enabled:   true,
			Interval:  time.Minute,
			Lookback:  24 * time.Hour,
			BatchSize: 100,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Health: HealthConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
