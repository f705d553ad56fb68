package provider

import (
	"context"

	"docforge/internal/prompt"
)

// EchoGenerator returns the rendered prompt verbatim. Useful for tests and
// for inspecting exactly what a template resolves to without spending
// provider tokens.
type EchoGenerator struct{}

// Generate implements prompt.Generator.
func (EchoGenerator) Generate(_ context.Context, _, userPrompt string, _ prompt.GenerateOptions) (string, error) {
	return userPrompt, nil
}

// Name implements prompt.Generator.
func (EchoGenerator) Name() string {
	return "echo"
}
