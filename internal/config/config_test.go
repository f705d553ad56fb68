package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "templates", cfg.TemplateDir)
	assert.Equal(t, "docforge.db", cfg.DocumentDB)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, "gemini", cfg.Provider.Name)
	assert.Equal(t, 120*time.Second, cfg.Provider.Timeout)
	assert.False(t, cfg.Logging.Debug)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("empty path loads defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "templates", cfg.TemplateDir)
	})

	t.Run("file values override defaults, unset keys keep them", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docforge.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
template_dir: /srv/templates
cache_size: 64
provider:
  name: openai
  model: gpt-4o
logging:
  debug: true
  level: debug
`), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/srv/templates", cfg.TemplateDir)
		assert.Equal(t, 64, cfg.CacheSize)
		assert.Equal(t, "openai", cfg.Provider.Name)
		assert.Equal(t, "gpt-4o", cfg.Provider.Model)
		assert.True(t, cfg.Logging.Debug)
		assert.Equal(t, "docforge.db", cfg.DocumentDB)
	})

	t.Run("malformed YAML errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docforge.yaml")
		require.NoError(t, os.WriteFile(path, []byte("provider: [broken"), 0644))
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("non-positive cache size resets to default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docforge.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cache_size: -5"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 256, cfg.CacheSize)
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docforge.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
provider:
  name: openai
`), 0644))

		t.Setenv("DOCFORGE_PROVIDER", "echo")
		t.Setenv("DOCFORGE_API_KEY", "sk-test")
		t.Setenv("DOCFORGE_TEMPLATE_DIR", "/env/templates")
		t.Setenv("DOCFORGE_CACHE_SIZE", "32")
		t.Setenv("DOCFORGE_DEBUG", "true")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "echo", cfg.Provider.Name)
		assert.Equal(t, "sk-test", cfg.Provider.APIKey)
		assert.Equal(t, "/env/templates", cfg.TemplateDir)
		assert.Equal(t, 32, cfg.CacheSize)
		assert.True(t, cfg.Logging.Debug)
	})

	t.Run("unparseable numeric env values are ignored", func(t *testing.T) {
		t.Setenv("DOCFORGE_CACHE_SIZE", "lots")
		t.Setenv("DOCFORGE_DEBUG", "sure")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 256, cfg.CacheSize)
		assert.False(t, cfg.Logging.Debug)
	})
}
