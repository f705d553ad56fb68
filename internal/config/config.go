// Package config loads docforge configuration from a YAML file with
// environment-variable overrides. Configuration is an explicit object handed
// to the engine at construction; nothing downstream reads the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"docforge/internal/provider"
)

// LoggingConfig controls debug logging.
type LoggingConfig struct {
	// Debug enables categorized file logging. Off by default.
	Debug bool `yaml:"debug"`

	// Dir is where log files are written.
	Dir string `yaml:"dir"`

	// Level is debug/info/warn/error.
	Level string `yaml:"level"`
}

// Config is the top-level docforge configuration.
type Config struct {
	// TemplateDir holds the YAML template definitions.
	TemplateDir string `yaml:"template_dir"`

	// DocumentDB is the SQLite database of previously generated documents.
	DocumentDB string `yaml:"document_db"`

	// CacheSize bounds the resolver's content cache (entries).
	CacheSize int `yaml:"cache_size"`

	// Provider selects and configures the generation provider.
	Provider provider.Config `yaml:"provider"`

	// Logging controls debug logging.
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		TemplateDir: "templates",
		DocumentDB:  "docforge.db",
		CacheSize:   256,
		Provider: provider.Config{
			Name:    "gemini",
			Timeout: 120 * time.Second,
		},
		Logging: LoggingConfig{
			Dir:   "logs",
			Level: "info",
		},
	}
}

// Load reads configuration from path (optional), then applies environment
// overrides. A missing file is not an error: defaults plus environment win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	return cfg, nil
}

// applyEnvOverrides lets DOCFORGE_* variables override file values, useful
// in CI and containerized runs.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCFORGE_TEMPLATE_DIR"); v != "" {
		c.TemplateDir = v
	}
	if v := os.Getenv("DOCFORGE_DOCUMENT_DB"); v != "" {
		c.DocumentDB = v
	}
	if v := os.Getenv("DOCFORGE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheSize = n
		}
	}
	if v := os.Getenv("DOCFORGE_PROVIDER"); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv("DOCFORGE_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("DOCFORGE_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("DOCFORGE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Debug = b
		}
	}
}
