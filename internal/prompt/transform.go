package prompt

import (
	"fmt"
	"strings"
	"sync"
)

// TransformFunc is a pure content transform applied to a fetched dependency.
type TransformFunc func(content string) (string, error)

// TransformRegistry maps transform names to functions. Dependencies reference
// transforms by name, so transform identity participates in cache keys.
type TransformRegistry struct {
	mu         sync.RWMutex
	transforms map[string]TransformFunc
}

// NewTransformRegistry creates a registry preloaded with the built-in
// transforms.
func NewTransformRegistry() *TransformRegistry {
	r := &TransformRegistry{transforms: make(map[string]TransformFunc)}
	r.registerDefaults()
	return r
}

// Register adds or replaces a named transform.
func (r *TransformRegistry) Register(name string, fn TransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = fn
}

// Lookup returns the named transform, or false if unknown.
func (r *TransformRegistry) Lookup(name string) (TransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transforms[name]
	return fn, ok
}

// registerDefaults adds the standard transforms used by document templates.
func (r *TransformRegistry) registerDefaults() {
	// headings_only keeps markdown heading lines
	r.transforms["headings_only"] = func(content string) (string, error) {
		var headings []string
		for _, line := range strings.Split(content, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				headings = append(headings, strings.TrimSpace(line))
			}
		}
		if len(headings) == 0 {
			return "", fmt.Errorf("no headings found")
		}
		return strings.Join(headings, "\n"), nil
	}

	// first_section keeps everything up to the second top-level heading
	r.transforms["first_section"] = func(content string) (string, error) {
		lines := strings.Split(content, "\n")
		headingCount := 0
		for i, line := range lines {
			if strings.HasPrefix(line, "# ") {
				headingCount++
				if headingCount == 2 {
					return strings.TrimSpace(strings.Join(lines[:i], "\n")), nil
				}
			}
		}
		return content, nil
	}

	// first_paragraph keeps text up to the first blank line
	r.transforms["first_paragraph"] = func(content string) (string, error) {
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return "", fmt.Errorf("empty content")
		}
		if idx := strings.Index(trimmed, "\n\n"); idx > 0 {
			return trimmed[:idx], nil
		}
		return trimmed, nil
	}

	// strip_code_blocks removes fenced code blocks
	r.transforms["strip_code_blocks"] = func(content string) (string, error) {
		var out []string
		inFence := false
		for _, line := range strings.Split(content, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inFence = !inFence
				continue
			}
			if !inFence {
				out = append(out, line)
			}
		}
		return strings.Join(out, "\n"), nil
	}
}
