package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, env map[string]string) *Config {
	t.Helper()
	var cfg Config
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(env),
	})
	require.NoError(t, err)
	return &cfg
}

func TestDefaults(t *testing.T) {
	cfg := load(t, map[string]string{"AUTH_JWT_SECRET": "s3cret"})

	assert.Equal(t, 6*time.Second, cfg.Generation.VideoDelay)
	assert.Equal(t, 4*time.Second, cfg.Generation.InstagramDelay)
	assert.Equal(t, 3*time.Second, cfg.Generation.BlogDelay)
	assert.Equal(t, 2*time.Second, cfg.Social.UploadDelay)
	assert.Equal(t, "campaign-assets", cfg.Storage.Bucket)
	assert.Equal(t, "campaign_activity", cfg.Queue.Topic)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestPerTypeDelaysAreConfigurable(t *testing.T) {
	cfg := load(t, map[string]string{
		"AUTH_JWT_SECRET":            "s3cret",
		"GENERATION_VIDEO_DELAY":     "10ms",
		"GENERATION_INSTAGRAM_DELAY": "20ms",
		"GENERATION_BLOG_DELAY":      "30ms",
	})
	assert.Equal(t, 10*time.Millisecond, cfg.Generation.VideoDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.Generation.InstagramDelay)
	assert.Equal(t, 30*time.Millisecond, cfg.Generation.BlogDelay)
}

func TestValidate(t *testing.T) {
	cfg := load(t, map[string]string{
		"STORAGE_BACKEND":    "s3",
		"GENERATION_BACKEND": "gemini",
	})
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
