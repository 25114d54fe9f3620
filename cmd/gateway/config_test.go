package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig()

	assert.Equal(t, "8000", cfg.port)
	assert.Equal(t, 100, cfg.maxConcurrent)
	assert.Equal(t, int64(50<<20), cfg.maxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.sessionIdleTimeout)
	assert.Equal(t, 5.0, cfg.segmentSeconds)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GATEWAY_PORT", "9100")
	t.Setenv("MAX_CONCURRENT_SESSIONS", "7")
	t.Setenv("SESSION_IDLE_TIMEOUT", "90s")
	t.Setenv("SEGMENT_SECONDS", "2.5")
	t.Setenv("MODEL_SERVER_URL", "http://model:9000")

	cfg := loadConfig()

	assert.Equal(t, "9100", cfg.port)
	assert.Equal(t, 7, cfg.maxConcurrent)
	assert.Equal(t, 90*time.Second, cfg.sessionIdleTimeout)
	assert.Equal(t, 2.5, cfg.segmentSeconds)
	assert.Equal(t, "http://model:9000", cfg.modelServerURL)
}

func TestLoadConfigBadValuesFallBack(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_SESSIONS", "lots")
	t.Setenv("SESSION_IDLE_TIMEOUT", "soon")
	t.Setenv("SEGMENT_SECONDS", "short")

	cfg := loadConfig()

	assert.Equal(t, 100, cfg.maxConcurrent)
	assert.Equal(t, 5*time.Minute, cfg.sessionIdleTimeout)
	assert.Equal(t, 5.0, cfg.segmentSeconds)
}
