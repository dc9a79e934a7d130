package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "vibemesh", cfg.MinioBucket)
	assert.Equal(t, "dlb://vibemesh", cfg.DolbyNamespace)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 90, cfg.MaxPollAttempts)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANALYSIS_POLL_INTERVAL", "2")
	t.Setenv("ANALYSIS_MAX_POLL_ATTEMPTS", "7")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SERVER_PORT", "9999")

	cfg := Load()

	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 7, cfg.MaxPollAttempts)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "9999", cfg.ServerPort)
}
