package prompt

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"docforge/internal/logging"
)

// ResolvedContent is one dependency's contribution to an injection point.
type ResolvedContent struct {
	Key     string
	Content string
	Weight  float64
}

// ResolvedSegment holds an injection point's resolved contents in dependency
// declaration order, plus any warnings accumulated along the way.
type ResolvedSegment struct {
	Contents []ResolvedContent
	Warnings []string
}

// Resolver resolves injection-point dependencies against a content provider,
// with a TTL-bounded cache and concurrent-fetch deduplication. It owns the
// cache; each Resolve call operates on caller-supplied immutable inputs, so
// independent injection points may resolve concurrently.
type Resolver struct {
	cache      *contentCache
	transforms *TransformRegistry
	group      singleflight.Group
}

// NewResolver creates a resolver with the given cache capacity. A capacity
// <= 0 selects the default.
func NewResolver(cacheSize int, transforms *TransformRegistry) *Resolver {
	if transforms == nil {
		transforms = NewTransformRegistry()
	}
	return &Resolver{
		cache:      newContentCache(cacheSize),
		transforms: transforms,
	}
}

// Transforms exposes the registry so callers can add project-specific
// transforms before loading templates.
func (r *Resolver) Transforms() *TransformRegistry {
	return r.transforms
}

// Resolve fetches every dependency of point in declaration order. Required
// dependencies that cannot be resolved abort the whole injection point with
// a MissingDependencyError; optional misses contribute nothing. Transform
// failures degrade to the untransformed content plus a warning.
func (r *Resolver) Resolve(ctx context.Context, point *InjectionPoint, provider ContentProvider) (*ResolvedSegment, error) {
	timer := logging.StartTimer(logging.CategoryResolve, "Resolver.Resolve")
	defer timer.Stop()

	segment := &ResolvedSegment{}
	for i := range point.Dependencies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dep := &point.Dependencies[i]

		content, warnings, found, err := r.resolveOne(ctx, dep, provider)
		segment.Warnings = append(segment.Warnings, warnings...)
		if err != nil {
			return nil, err
		}
		if !found {
			if dep.Required {
				return nil, &MissingDependencyError{
					Placeholder: point.Placeholder,
					DocumentKey: dep.DocumentKey,
				}
			}
			logging.Get(logging.CategoryResolve).Debug(
				"Optional dependency %s absent, skipping", dep.DocumentKey)
			continue
		}

		segment.Contents = append(segment.Contents, ResolvedContent{
			Key:     dep.DocumentKey,
			Content: content,
			Weight:  dep.Weight,
		})
	}

	logging.Get(logging.CategoryResolve).Debug(
		"Resolved %d/%d dependencies for %s",
		len(segment.Contents), len(point.Dependencies), point.Placeholder)

	return segment, nil
}

// resolveOne resolves a single dependency: cache lookup, deduplicated
// provider fetch, best-effort transform, cache store. found is false when
// the provider has no content for the key.
func (r *Resolver) resolveOne(ctx context.Context, dep *Dependency, provider ContentProvider) (content string, warnings []string, found bool, err error) {
	key := cacheKey(dep.DocumentKey, dep.Transform)

	if cached, ok := r.cache.get(key, dep.MaxAge); ok {
		logging.Get(logging.CategoryResolve).Debug("Cache hit for %s", dep.DocumentKey)
		return cached, nil, true, nil
	}

	// Deduplicate concurrent fetches of the same (key, transform). Every
	// waiter receives the same fetched value; the cache write is idempotent.
	type fetchResult struct {
		content  string
		warnings []string
	}
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		raw, fetchErr := provider.Fetch(ctx, dep.DocumentKey)
		if fetchErr != nil {
			return nil, fetchErr
		}

		res := fetchResult{content: raw}
		if dep.Transform != "" {
			res.content, res.warnings = r.applyTransform(dep, raw)
		}

		r.cache.set(key, res.content)
		return res, nil
	})
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return "", nil, false, nil
		}
		return "", nil, false, fmt.Errorf("fetching %s: %w", dep.DocumentKey, err)
	}

	res := v.(fetchResult)
	return res.content, res.warnings, true, nil
}

// applyTransform runs the named transform over raw content. Unknown or
// failing transforms return the raw content with a warning: enrichment is
// best-effort, core resolution is strict.
func (r *Resolver) applyTransform(dep *Dependency, raw string) (string, []string) {
	fn, ok := r.transforms.Lookup(dep.Transform)
	if !ok {
		warn := fmt.Sprintf("dependency %s: unknown transform %q, using raw content",
			dep.DocumentKey, dep.Transform)
		logging.Get(logging.CategoryResolve).Warn("%s", warn)
		return raw, []string{warn}
	}

	transformed, err := fn(raw)
	if err != nil {
		warn := fmt.Sprintf("dependency %s: transform %q failed (%v), using raw content",
			dep.DocumentKey, dep.Transform, err)
		logging.Get(logging.CategoryResolve).Warn("%s", warn)
		return raw, []string{warn}
	}
	return transformed, nil
}
