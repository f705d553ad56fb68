// Package provider supplies concrete implementations of the engine's
// external collaborators: content providers that serve previously generated
// documents, generation providers that produce new content from rendered
// prompts, and a summarizer built over any generator.
package provider

import (
	"fmt"
	"time"

	"docforge/internal/prompt"
)

// Config selects and configures a generation provider. It is passed
// explicitly at construction; nothing here reads ambient global state.
type Config struct {
	// Name selects the provider: "gemini", "openai", or "echo".
	Name string `yaml:"name"`

	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key"`

	// Model overrides the provider default model.
	Model string `yaml:"model"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `yaml:"timeout"`
}

// NewGenerator constructs the configured generation provider.
func NewGenerator(cfg Config) (prompt.Generator, error) {
	switch cfg.Name {
	case "gemini":
		return NewGeminiGenerator(cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model), nil
	case "echo":
		return &EchoGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Name)
	}
}
