package provider

import (
	"context"
	"fmt"
	"sync"

	"docforge/internal/prompt"
)

// MemoryContentProvider serves documents from an in-memory map. Used by
// tests and CLI dry runs.
type MemoryContentProvider struct {
	mu        sync.RWMutex
	documents map[string]string
}

// NewMemoryContentProvider creates a provider preloaded with documents.
func NewMemoryContentProvider(documents map[string]string) *MemoryContentProvider {
	docs := make(map[string]string, len(documents))
	for k, v := range documents {
		docs[k] = v
	}
	return &MemoryContentProvider{documents: docs}
}

// Put stores or replaces a document.
func (m *MemoryContentProvider) Put(key, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[key] = content
}

// Fetch implements prompt.ContentProvider.
func (m *MemoryContentProvider) Fetch(_ context.Context, documentKey string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.documents[documentKey]
	if !ok {
		return "", fmt.Errorf("document %q: %w", documentKey, prompt.ErrDocumentNotFound)
	}
	return content, nil
}
