package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Set defaults
	cfg := DefaultConfig()

	// Set up viper
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Read config file (optional - if file doesn't exist, continue with defaults)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Warning: Could not read config file %s: %v. Using defaults and environment variables.\n", configPath, err)
	} else {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	// Override with environment variables (these take precedence)
	applyEnvironmentOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func applyEnvironmentOverrides(cfg *Config) {
	// Reader configuration
	if actor := os.Getenv("READER_ACTOR"); actor != "" {
		cfg.Reader.Actor = actor
	}
	if limit := os.Getenv("READER_DEFAULT_LIMIT"); limit != "" {
		if n, err := strconv.ParseInt(limit, 10, 64); err == nil {
			cfg.Reader.DefaultLimit = n
		}
	}

	// Content source configuration
	if baseURL := os.Getenv("SOURCE_BASE_URL"); baseURL != "" {
		cfg.Source.BaseURL = baseURL
	}

	// Redis configuration
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if p, err := strconv.Atoi(redisPort); err == nil {
			cfg.Redis.Port = p
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}

	// Mongo configuration
	if mongoURI := os.Getenv("MONGO_URI"); mongoURI != "" {
		cfg.Mongo.URI = mongoURI
	}
	if mongoDB := os.Getenv("MONGO_DATABASE"); mongoDB != "" {
		cfg.Mongo.Database = mongoDB
	}

	// Postgres configuration
	if pgHost := os.Getenv("POSTGRES_HOST"); pgHost != "" {
		cfg.Postgres.Host = pgHost
	}
	if pgPort := os.Getenv("POSTGRES_PORT"); pgPort != "" {
		if p, err := strconv.Atoi(pgPort); err == nil {
			cfg.Postgres.Port = p
		}
	}
	if pgPassword := os.Getenv("POSTGRES_PASSWORD"); pgPassword != "" {
		cfg.Postgres.Password = pgPassword
	}

	// Queue configuration
	if backend := os.Getenv("QUEUE_BACKEND"); backend != "" {
		cfg.Queue.Backend = backend
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		cfg.Nats.URL = natsURL
	}

	// Logging configuration
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}
