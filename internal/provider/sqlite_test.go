package provider

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docforge/internal/prompt"
)

func openTestDB(t *testing.T) *SQLiteContentProvider {
	t.Helper()
	db, err := OpenSQLiteContentProvider(filepath.Join(t.TempDir(), "documents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteContentProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("store then fetch round-trips", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.Store(ctx, "project-charter", "charter body"))

		content, err := db.Fetch(ctx, "project-charter")
		require.NoError(t, err)
		assert.Equal(t, "charter body", content)
	})

	t.Run("store replaces existing content", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.Store(ctx, "risks", "v1"))
		require.NoError(t, db.Store(ctx, "risks", "v2"))

		content, err := db.Fetch(ctx, "risks")
		require.NoError(t, err)
		assert.Equal(t, "v2", content)
	})

	t.Run("unknown key wraps ErrDocumentNotFound", func(t *testing.T) {
		db := openTestDB(t)
		_, err := db.Fetch(ctx, "absent")
		assert.ErrorIs(t, err, prompt.ErrDocumentNotFound)
	})

	t.Run("documents survive reopening", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "documents.db")

		first, err := OpenSQLiteContentProvider(path)
		require.NoError(t, err)
		require.NoError(t, first.Store(ctx, "memo", "persisted"))
		require.NoError(t, first.Close())

		second, err := OpenSQLiteContentProvider(path)
		require.NoError(t, err)
		defer second.Close()

		content, err := second.Fetch(ctx, "memo")
		require.NoError(t, err)
		assert.Equal(t, "persisted", content)
	})
}
