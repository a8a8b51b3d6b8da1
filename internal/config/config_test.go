package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 8}, cfg.Render.Pages)
	assert.Equal(t, 2.0, cfg.Render.Scale)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Oracle.BaseURL)
	assert.Equal(t, 3, cfg.Oracle.MaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9999
  request_timeout: 90s
render:
  pages: [1, 2]
  scale: 3.0
oracle:
  base_url: http://localhost:1234/v1
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []int{1, 2}, cfg.Render.Pages)
	assert.Equal(t, 3.0, cfg.Render.Scale)
	assert.Equal(t, "http://localhost:1234/v1", cfg.Oracle.BaseURL)
	// Untouched sections keep defaults
	assert.Equal(t, 3, cfg.Oracle.MaxRetries)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("ORACLE_BASE_URL", "http://stub:9/v1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://stub:9/v1", cfg.Oracle.BaseURL)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"scale too small", func(c *Config) { c.Render.Scale = 0.5 }},
		{"scale too large", func(c *Config) { c.Render.Scale = 9 }},
		{"no pages", func(c *Config) { c.Render.Pages = nil }},
		{"no base url", func(c *Config) { c.Oracle.BaseURL = "" }},
		{"zero request timeout", func(c *Config) { c.Server.RequestTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
