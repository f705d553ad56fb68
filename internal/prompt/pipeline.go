package prompt

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docforge/internal/logging"
)

// Pipeline wires the engine stages together: template lookup, concurrent
// injection-point resolution, aggregation, rendering, and (optionally)
// generation plus quality scoring. Everything it touches is either immutable
// per render or internally synchronized, so one Pipeline serves concurrent
// callers.
type Pipeline struct {
	store      *Store
	resolver   *Resolver
	aggregator *Aggregator
	generator  Generator
	opts       GenerateOptions
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithGenerator sets the generation provider used by Generate.
func WithGenerator(g Generator, opts GenerateOptions) PipelineOption {
	return func(p *Pipeline) {
		p.generator = g
		p.opts = opts
	}
}

// WithSummarizer sets the summarizer backing the summarize strategy.
func WithSummarizer(s Summarizer) PipelineOption {
	return func(p *Pipeline) {
		p.aggregator = NewAggregator(s)
	}
}

// WithCacheSize sets the resolver cache capacity.
func WithCacheSize(size int) PipelineOption {
	return func(p *Pipeline) {
		p.resolver = NewResolver(size, p.resolver.Transforms())
	}
}

// NewPipeline creates a pipeline over the given store.
func NewPipeline(store *Store, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:      store,
		resolver:   NewResolver(0, nil),
		aggregator: NewAggregator(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the underlying template store.
func (p *Pipeline) Store() *Store {
	return p.store
}

// Resolver returns the dependency resolver (for registering transforms).
func (p *Pipeline) Resolver() *Resolver {
	return p.resolver
}

// Render produces the final prompt for a template id and project variables.
// Independent injection points resolve concurrently; a failed required
// dependency aborts the render. Warnings from resolution and aggregation are
// carried on the RenderedPrompt in injection-point declaration order.
func (p *Pipeline) Render(ctx context.Context, templateID string, vars map[string]string, provider ContentProvider) (*RenderedPrompt, error) {
	timer := logging.StartTimer(logging.CategoryRender, "Pipeline.Render")
	defer timer.Stop()

	tpl, err := p.store.Get(templateID)
	if err != nil {
		return nil, err
	}

	// Fail fast before any provider round-trips
	for _, name := range tpl.RequiredVariables {
		if _, ok := vars[name]; !ok {
			return nil, &MissingVariableError{TemplateID: tpl.ID, Variable: name}
		}
	}

	segments := make(map[string]string, len(tpl.InjectionPoints))
	pointWarnings := make([][]string, len(tpl.InjectionPoints))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i := range tpl.InjectionPoints {
		point := &tpl.InjectionPoints[i]
		g.Go(func() error {
			resolved, err := p.resolver.Resolve(gctx, point, provider)
			if err != nil {
				return err
			}

			segment, aggWarnings, err := p.aggregator.Aggregate(gctx, point, resolved.Contents)
			if err != nil {
				return err
			}

			mu.Lock()
			segments[point.Placeholder] = segment
			pointWarnings[i] = append(resolved.Warnings, aggWarnings...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rendered, err := Render(tpl, segments, vars)
	if err != nil {
		return nil, err
	}
	for _, ws := range pointWarnings {
		rendered.Warnings = append(rendered.Warnings, ws...)
	}
	return rendered, nil
}

// Generate runs the full pipeline: render, call the generation provider, and
// score the result against the template's quality criteria. Quality issues
// lower the score and add warnings but never fail the run; only a provider
// failure yields Success == false alongside the returned GenerationError.
func (p *Pipeline) Generate(ctx context.Context, templateID string, vars map[string]string, provider ContentProvider) (*GenerationResult, error) {
	if p.generator == nil {
		return nil, fmt.Errorf("no generation provider configured")
	}

	requestID := uuid.NewString()
	logging.Get(logging.CategoryProvider).Info(
		"[req:%s] Generating %s via %s", requestID, templateID, p.generator.Name())

	rendered, err := p.Render(ctx, templateID, vars, provider)
	if err != nil {
		return nil, err
	}

	tpl, err := p.store.Get(templateID)
	if err != nil {
		return nil, err
	}

	content, err := p.generator.Generate(ctx, rendered.System, rendered.Prompt, p.opts)
	if err != nil {
		genErr := &GenerationError{TemplateID: templateID, Provider: p.generator.Name(), Err: err}
		logging.Get(logging.CategoryProvider).Error("[req:%s] %v", requestID, genErr)
		return &GenerationResult{
			RequestID:  requestID,
			TemplateID: templateID,
			Warnings:   append(rendered.Warnings, genErr.Error()),
			Success:    false,
		}, genErr
	}

	score, qualityWarnings := Score(content, tpl.Quality)
	logging.Get(logging.CategoryQuality).Info(
		"[req:%s] Template %s scored %d (%d warnings)",
		requestID, templateID, score, len(qualityWarnings))

	return &GenerationResult{
		RequestID:    requestID,
		TemplateID:   templateID,
		Content:      content,
		QualityScore: score,
		Warnings:     append(rendered.Warnings, qualityWarnings...),
		Success:      true,
	}, nil
}
