package prompt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"docforge/internal/logging"
)

// Store holds validated template definitions for the process lifetime.
// Templates load from YAML files at init and may be hot-reloaded; lookups
// return the immutable definition, never a partially loaded one.
type Store struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// templateFile is the on-disk YAML shape: one file carries one or more
// template definitions.
type templateFile struct {
	Templates []*Template `yaml:"templates"`
}

// NewStore creates an empty template store.
func NewStore() *Store {
	return &Store{templates: make(map[string]*Template)}
}

// Get returns the template with the given id, or ErrTemplateNotFound.
// Falling back to a generic template on a miss is caller policy.
func (s *Store) Get(id string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", id, ErrTemplateNotFound)
	}
	return tpl, nil
}

// List returns summaries of stored templates, sorted by id. An empty
// category lists everything.
func (s *Store) List(category string) []TemplateSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []TemplateSummary
	for _, tpl := range s.templates {
		if category != "" && tpl.Category != category {
			continue
		}
		out = append(out, tpl.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Upsert validates and stores a template definition. Validation failures
// leave the store unchanged.
func (s *Store) Upsert(tpl *Template) error {
	if tpl == nil {
		return &ValidationError{Reason: "template must not be nil"}
	}
	if err := tpl.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.templates[tpl.ID] = tpl
	s.mu.Unlock()

	logging.Get(logging.CategoryStore).Debug("Upserted template %s", tpl.ID)
	return nil
}

// Len returns the number of stored templates.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.templates)
}

// LoadFile loads every template definition from a YAML file.
// Returns the number of templates stored.
func (s *Store) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading template file %s: %w", path, err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parsing template file %s: %w", path, err)
	}

	stored := 0
	for _, tpl := range file.Templates {
		if err := s.Upsert(tpl); err != nil {
			return stored, fmt.Errorf("template file %s: %w", path, err)
		}
		stored++
	}

	logging.Get(logging.CategoryStore).Info("Loaded %d templates from %s", stored, filepath.Base(path))
	return stored, nil
}

// LoadDirectory recursively loads all YAML files under dir. Files that fail
// to load are logged and skipped so one bad file does not block the rest.
func (s *Store) LoadDirectory(dir string) (int, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Store.LoadDirectory")
	defer timer.Stop()

	total := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isYAML(path) {
			return nil
		}

		n, loadErr := s.LoadFile(path)
		total += n
		if loadErr != nil {
			logging.Get(logging.CategoryStore).Error("Failed to load %s: %v", path, loadErr)
		}
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("walking template directory %s: %w", dir, err)
	}

	logging.Get(logging.CategoryStore).Info("Loaded %d templates from %s", total, dir)
	return total, nil
}

// Watch hot-reloads template files under dir until ctx is cancelled.
// Reload failures keep the previously stored definitions serving.
func (s *Store) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				if !isYAML(event.Name) {
					continue
				}
				if _, err := s.LoadFile(event.Name); err != nil {
					logging.Get(logging.CategoryStore).Error("Reload of %s failed: %v", event.Name, err)
				} else {
					logging.Get(logging.CategoryStore).Info("Reloaded %s", event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Get(logging.CategoryStore).Warn("Watcher error: %v", err)
			}
		}
	}()

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
