package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadQueueBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Queue.Backend = "rabbitmq"
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresNatsURLForNatsBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Queue.Backend = "nats"
	cfg.Nats.URL = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedScoreBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reader.MinDonorScore = 100
	cfg.Reader.MaxDonorScore = 10
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsTinyCopyCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reader.MinCopyCount = 1
	assert.Error(t, cfg.Validate())
}

func TestValidateDefaultsLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = ""
	cfg.Logging.Format = ""

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("READER_ACTOR", "other-actor")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("QUEUE_BACKEND", "nats")

	cfg := DefaultConfig()
	applyEnvironmentOverrides(cfg)

	assert.Equal(t, "other-actor", cfg.Reader.Actor)
	assert.Equal(t, "redis.internal", cfg.Redis.Host)
	assert.Equal(t, "nats", cfg.Queue.Backend)
}
