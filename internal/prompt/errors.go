package prompt

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound indicates the requested template id is not in the
	// store. Recoverable: callers decide whether to fall back to a generic
	// template.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrDocumentNotFound is returned by content providers when a document
	// key has no stored content.
	ErrDocumentNotFound = errors.New("document not found")
)

// ValidationError reports a structural problem with a template definition.
// It is fatal at load/upsert time, never at render time.
type ValidationError struct {
	TemplateID string
	Field      string
	Reason     string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("template %s: invalid %s: %s", e.TemplateID, e.Field, e.Reason)
	}
	return fmt.Sprintf("template %s: %s", e.TemplateID, e.Reason)
}

// MissingDependencyError reports that a required dependency could not be
// resolved. It aborts the enclosing injection point.
type MissingDependencyError struct {
	Placeholder string
	DocumentKey string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("injection point %s: required dependency %s could not be resolved",
		e.Placeholder, e.DocumentKey)
}

// Unwrap lets errors.Is(err, ErrDocumentNotFound) see through the wrapper.
func (e *MissingDependencyError) Unwrap() error {
	return ErrDocumentNotFound
}

// MissingVariableError reports that a required template variable was not
// supplied by the caller. It aborts the render.
type MissingVariableError struct {
	TemplateID string
	Variable   string
}

// Error implements the error interface.
func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template %s: required variable %s not supplied", e.TemplateID, e.Variable)
}

// GenerationError wraps an opaque failure from an external generation
// provider. Surfaced to the caller, never retried internally.
type GenerationError struct {
	TemplateID string
	Provider   string
	Err        error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for template %s (provider %s): %v",
		e.TemplateID, e.Provider, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}
