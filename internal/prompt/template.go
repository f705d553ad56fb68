// Package prompt implements the template and context resolution engine for
// docforge. It compiles document-generation prompts from data-driven
// templates: a template declares variables, conditional fragments, and
// injection points whose dependencies are resolved from previously generated
// documents, aggregated under a character budget, and substituted into the
// template body. The engine produces a RenderedPrompt; calling a generation
// provider and scoring the result is the pipeline's job.
package prompt

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AggregationStrategy selects how multiple dependency contents are merged
// into a single bounded segment.
type AggregationStrategy string

const (
	// StrategyConcatenate joins contents in declaration order.
	StrategyConcatenate AggregationStrategy = "concatenate"

	// StrategyPrioritize joins contents in descending weight order, so
	// higher-weight content survives truncation first.
	StrategyPrioritize AggregationStrategy = "prioritize"

	// StrategySummarize compresses each content through an external
	// summarizer before joining. Falls back to concatenate when no
	// summarizer is available.
	StrategySummarize AggregationStrategy = "summarize"

	// StrategyTemplate substitutes contents into named slots of a
	// sub-template.
	StrategyTemplate AggregationStrategy = "template"
)

// AllStrategies returns every defined aggregation strategy.
func AllStrategies() []AggregationStrategy {
	return []AggregationStrategy{
		StrategyConcatenate,
		StrategyPrioritize,
		StrategySummarize,
		StrategyTemplate,
	}
}

// valid reports whether s is a known strategy. Empty defaults to concatenate
// at load time.
func (s AggregationStrategy) valid() bool {
	switch s {
	case StrategyConcatenate, StrategyPrioritize, StrategySummarize, StrategyTemplate:
		return true
	}
	return false
}

// Dependency identifies another document whose content feeds an injection
// point.
type Dependency struct {
	// DocumentKey identifies the document to fetch from the content provider.
	DocumentKey string `yaml:"document_key"`

	// Required makes absence a hard error for the enclosing injection point.
	// Optional dependencies that cannot be resolved are silently skipped.
	Required bool `yaml:"required"`

	// Weight in [0,1] drives the prioritize and summarize strategies.
	Weight float64 `yaml:"weight"`

	// Transform names a registered content transform applied after fetch.
	// Transforms are best-effort enrichment: a failing transform yields the
	// untransformed content plus a warning.
	Transform string `yaml:"transform,omitempty"`

	// MaxAge bounds cache staleness. A cached value older than MaxAge is
	// treated as a miss. Zero disables caching for this dependency.
	MaxAge time.Duration `yaml:"max_age,omitempty"`
}

// UnmarshalYAML accepts human-readable durations ("5m", "1h") for max_age.
func (d *Dependency) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		DocumentKey string  `yaml:"document_key"`
		Required    bool    `yaml:"required"`
		Weight      float64 `yaml:"weight"`
		Transform   string  `yaml:"transform"`
		MaxAge      string  `yaml:"max_age"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	d.DocumentKey = raw.DocumentKey
	d.Required = raw.Required
	d.Weight = raw.Weight
	d.Transform = raw.Transform
	if raw.MaxAge != "" {
		dur, err := time.ParseDuration(raw.MaxAge)
		if err != nil {
			return fmt.Errorf("dependency %s: invalid max_age %q: %w", raw.DocumentKey, raw.MaxAge, err)
		}
		d.MaxAge = dur
	}
	return nil
}

// InjectionPoint is a named slot in the template body filled by aggregated
// dependency content.
type InjectionPoint struct {
	// Placeholder is the marker inside the body this point replaces,
	// without braces (e.g. "RELATED_REQUIREMENTS").
	Placeholder string `yaml:"placeholder"`

	// Dependencies in declaration order. Resolution preserves this order
	// independent of cache state.
	Dependencies []Dependency `yaml:"dependencies"`

	// Strategy selects the aggregation algorithm.
	Strategy AggregationStrategy `yaml:"strategy"`

	// MaxLength is the character budget for the merged segment. Must be > 0;
	// no strategy may exceed it.
	MaxLength int `yaml:"max_length"`

	// SlotTemplate holds the sub-template for the template strategy, with
	// {{documentKey}} slots.
	SlotTemplate string `yaml:"slot_template,omitempty"`
}

// Fragment is an optional body segment gated by a condition over project
// variables.
type Fragment struct {
	// Placeholder is the marker inside the body this fragment replaces.
	Placeholder string `yaml:"placeholder"`

	// Condition is a simple comparison (e.g. "TEAM_SIZE >= 5"). Unknown
	// variables evaluate to false; malformed expressions are rejected at
	// validation time.
	Condition string `yaml:"condition"`

	// Content is included when the condition holds, otherwise the
	// placeholder collapses to the empty string.
	Content string `yaml:"content"`
}

// QualityCriteria declares structural checks for generated content.
type QualityCriteria struct {
	// MinLength is the minimum acceptable character count.
	MinLength int `yaml:"min_length,omitempty"`

	// RequiredSections lists headings that must appear in the output.
	RequiredSections []string `yaml:"required_sections,omitempty"`

	// ForbiddenPhrases lists substrings whose presence is a violation.
	ForbiddenPhrases []string `yaml:"forbidden_phrases,omitempty"`
}

// Template is a data-driven prompt definition. Templates are immutable after
// load; each render operates on a snapshot.
type Template struct {
	// ID is the unique template key (e.g. "requirements-spec").
	ID string `yaml:"id"`

	// Category groups templates (e.g. a named body of knowledge).
	Category string `yaml:"category,omitempty"`

	// SystemPersona is the AI role handed to the generation provider
	// alongside the rendered prompt.
	SystemPersona string `yaml:"system_persona"`

	// Body is the prompt template text with {{NAME}} placeholders.
	Body string `yaml:"body"`

	// InjectionPoints in body order.
	InjectionPoints []InjectionPoint `yaml:"injection_points,omitempty"`

	// RequiredVariables must be supplied by the caller at render time.
	RequiredVariables []string `yaml:"required_variables,omitempty"`

	// Fragments are condition-gated optional body segments.
	Fragments []Fragment `yaml:"fragments,omitempty"`

	// Quality declares post-generation checks.
	Quality QualityCriteria `yaml:"quality,omitempty"`
}

// TemplateSummary is the listing view of a template.
type TemplateSummary struct {
	ID            string
	Category      string
	Placeholders  int
	RequiredVars  int
	HasConditions bool
}

// Summary returns the listing view of t.
func (t *Template) Summary() TemplateSummary {
	return TemplateSummary{
		ID:            t.ID,
		Category:      t.Category,
		Placeholders:  len(t.InjectionPoints),
		RequiredVars:  len(t.RequiredVariables),
		HasConditions: len(t.Fragments) > 0,
	}
}

// GenerationResult is the outcome of a full pipeline run.
type GenerationResult struct {
	// RequestID correlates logs for a single pipeline run.
	RequestID string

	// TemplateID that produced this result.
	TemplateID string

	// Content is the generated text. Empty when Success is false.
	Content string

	// QualityScore in 0-100.
	QualityScore int

	// Warnings collects resolution, rendering, and quality diagnostics in
	// the order they were found.
	Warnings []string

	// Success is false only when the generation provider failed. Quality
	// issues never flip this: they are scores plus warnings.
	Success bool
}

// RenderedPrompt is the engine's boundary object: the caller forwards it to
// whichever generation provider is configured.
type RenderedPrompt struct {
	TemplateID string
	System     string
	Prompt     string
	Warnings   []string
}

// =============================================================================
// EXTERNAL COLLABORATORS
// =============================================================================

// ContentProvider fetches previously generated documents by key.
// Implementations return ErrDocumentNotFound for unknown keys.
type ContentProvider interface {
	Fetch(ctx context.Context, documentKey string) (string, error)
}

// Summarizer compresses content toward a target character length. Used only
// by the summarize strategy; a nil summarizer degrades to concatenation.
type Summarizer interface {
	Summarize(ctx context.Context, content string, targetLength int) (string, error)
}

// GenerateOptions tunes a generation provider call.
type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Generator produces content from a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, opts GenerateOptions) (string, error)
	Name() string
}

// =============================================================================
// VALIDATION
// =============================================================================

// placeholderPattern matches {{NAME}} markers in template bodies. Hyphens
// are allowed so document keys can appear as slots in sub-templates.
var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_-]+)\}\}`)

// Placeholders returns the distinct placeholder names referenced in s, in
// first-occurrence order.
func Placeholders(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Validate enforces the structural invariants of a template definition.
// Every placeholder in the body must correspond to a declared variable, an
// injection point, or a fragment; unresolved placeholders are a
// configuration error, not a runtime content gap.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return &ValidationError{TemplateID: t.ID, Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.Body) == "" {
		return &ValidationError{TemplateID: t.ID, Field: "body", Reason: "must not be empty"}
	}

	declared := make(map[string]string) // placeholder -> kind
	for _, v := range t.RequiredVariables {
		declared[v] = "variable"
	}

	for i, ip := range t.InjectionPoints {
		if ip.Placeholder == "" {
			return &ValidationError{TemplateID: t.ID,
				Field:  fmt.Sprintf("injection_points[%d]", i),
				Reason: "placeholder must not be empty"}
		}
		if kind, dup := declared[ip.Placeholder]; dup {
			return &ValidationError{TemplateID: t.ID,
				Field:  fmt.Sprintf("injection_points[%d]", i),
				Reason: fmt.Sprintf("placeholder %s already declared as %s", ip.Placeholder, kind)}
		}
		declared[ip.Placeholder] = "injection point"

		if ip.MaxLength <= 0 {
			return &ValidationError{TemplateID: t.ID,
				Field:  fmt.Sprintf("injection_points[%d].max_length", i),
				Reason: "must be > 0"}
		}
		strategy := ip.Strategy
		if strategy == "" {
			strategy = StrategyConcatenate
		}
		if !strategy.valid() {
			return &ValidationError{TemplateID: t.ID,
				Field:  fmt.Sprintf("injection_points[%d].strategy", i),
				Reason: fmt.Sprintf("unknown strategy %q", ip.Strategy)}
		}
		if len(ip.Dependencies) == 0 {
			return &ValidationError{TemplateID: t.ID,
				Field:  fmt.Sprintf("injection_points[%d].dependencies", i),
				Reason: "must declare at least one dependency"}
		}
		depKeys := make(map[string]bool, len(ip.Dependencies))
		for j, dep := range ip.Dependencies {
			if dep.DocumentKey == "" {
				return &ValidationError{TemplateID: t.ID,
					Field:  fmt.Sprintf("injection_points[%d].dependencies[%d]", i, j),
					Reason: "document_key must not be empty"}
			}
			if dep.Weight < 0 || dep.Weight > 1 {
				return &ValidationError{TemplateID: t.ID,
					Field:  fmt.Sprintf("injection_points[%d].dependencies[%d].weight", i, j),
					Reason: "must be in [0,1]"}
			}
			depKeys[dep.DocumentKey] = true
		}
		if strategy == StrategyTemplate {
			if strings.TrimSpace(ip.SlotTemplate) == "" {
				return &ValidationError{TemplateID: t.ID,
					Field:  fmt.Sprintf("injection_points[%d].slot_template", i),
					Reason: "required for the template strategy"}
			}
			for _, slot := range Placeholders(ip.SlotTemplate) {
				if !depKeys[slot] {
					return &ValidationError{TemplateID: t.ID,
						Field:  fmt.Sprintf("injection_points[%d].slot_template", i),
						Reason: fmt.Sprintf("slot %s does not match any dependency document_key", slot)}
				}
			}
		}
	}

	for i, fr := range t.Fragments {
		if fr.Placeholder == "" {
			return &ValidationError{TemplateID: t.ID,
				Field:  fmt.Sprintf("fragments[%d]", i),
				Reason: "placeholder must not be empty"}
		}
		if kind, dup := declared[fr.Placeholder]; dup {
			return &ValidationError{TemplateID: t.ID,
				Field:  fmt.Sprintf("fragments[%d]", i),
				Reason: fmt.Sprintf("placeholder %s already declared as %s", fr.Placeholder, kind)}
		}
		declared[fr.Placeholder] = "fragment"

		if _, err := ParseCondition(fr.Condition); err != nil {
			return &ValidationError{TemplateID: t.ID,
				Field:  fmt.Sprintf("fragments[%d].condition", i),
				Reason: err.Error()}
		}
	}

	for _, name := range Placeholders(t.Body) {
		if _, ok := declared[name]; !ok {
			return &ValidationError{TemplateID: t.ID,
				Field:  "body",
				Reason: fmt.Sprintf("placeholder %s is neither a declared variable, injection point, nor fragment", name)}
		}
	}

	// Fragment bodies may only reference declared variables: their content is
	// substituted before variable expansion.
	for i, fr := range t.Fragments {
		for _, name := range Placeholders(fr.Content) {
			if declared[name] != "variable" {
				return &ValidationError{TemplateID: t.ID,
					Field:  fmt.Sprintf("fragments[%d].content", i),
					Reason: fmt.Sprintf("placeholder %s must be a declared variable", name)}
			}
		}
	}

	return nil
}
