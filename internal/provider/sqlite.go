package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"docforge/internal/logging"
	"docforge/internal/prompt"
)

// SQLiteContentProvider serves previously generated documents from a SQLite
// database. Documents are written by whichever pipeline run produced them
// and read back as dependency content for later templates.
type SQLiteContentProvider struct {
	db *sql.DB
}

// OpenSQLiteContentProvider opens (or creates) the document database at path.
func OpenSQLiteContentProvider(path string) (*SQLiteContentProvider, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening document database %s: %w", path, err)
	}

	p := &SQLiteContentProvider{db: db}
	if err := p.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLiteContentProvider) ensureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			document_key TEXT PRIMARY KEY,
			content      TEXT NOT NULL,
			updated_at   INTEGER NOT NULL
		);
	`
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating documents schema: %w", err)
	}
	return nil
}

// Fetch implements prompt.ContentProvider.
func (p *SQLiteContentProvider) Fetch(ctx context.Context, documentKey string) (string, error) {
	var content string
	err := p.db.QueryRowContext(ctx,
		`SELECT content FROM documents WHERE document_key = ?`, documentKey,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("document %q: %w", documentKey, prompt.ErrDocumentNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("fetching document %q: %w", documentKey, err)
	}
	return content, nil
}

// Store writes or replaces a document.
func (p *SQLiteContentProvider) Store(ctx context.Context, documentKey, content string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO documents (document_key, content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(document_key) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at
	`, documentKey, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("storing document %q: %w", documentKey, err)
	}

	logging.Get(logging.CategoryProvider).Debug("Stored document %s (%d chars)", documentKey, len(content))
	return nil
}

// Close closes the underlying database.
func (p *SQLiteContentProvider) Close() error {
	return p.db.Close()
}
