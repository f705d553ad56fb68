package provider

import (
	"context"
	"fmt"

	"docforge/internal/prompt"
)

const summarizerPersona = "You are a precise technical summarizer. Preserve key facts, " +
	"section structure, and terminology. Output only the summary."

// LLMSummarizer compresses content through any generation provider. Backing
// the summarize aggregation strategy with the same provider stack keeps the
// engine's collaborator surface down to one credential.
type LLMSummarizer struct {
	generator prompt.Generator
	opts      prompt.GenerateOptions
}

// NewLLMSummarizer creates a summarizer over the given generator.
func NewLLMSummarizer(generator prompt.Generator, opts prompt.GenerateOptions) *LLMSummarizer {
	return &LLMSummarizer{generator: generator, opts: opts}
}

// Summarize implements prompt.Summarizer. The returned text may still exceed
// targetLength; the aggregator enforces the hard bound.
func (s *LLMSummarizer) Summarize(ctx context.Context, content string, targetLength int) (string, error) {
	request := fmt.Sprintf(
		"Summarize the following document in at most %d characters.\n\n---\n%s",
		targetLength, content)

	summary, err := s.generator.Generate(ctx, summarizerPersona, request, s.opts)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return summary, nil
}
