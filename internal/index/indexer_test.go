package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"prism/internal/crawler"
	"prism/internal/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "import os\n\nclass Repo:\n    def save(self):\n        persist(self)\n\ndef persist(obj):\n    os.write(obj)\n")
	writeFile(t, dir, "b.py", "def broken(:\n    pass\n")
	writeFile(t, dir, "sub/c.py", "def run():\n    persist(1)\n")
	writeFile(t, dir, "build/gen.py", "def generated():\n    pass\n")
	return dir
}

func newIndexer(maxChunks int) *Indexer {
	return NewIndexer(crawler.NewCrawler(nil), knowledge.NewChunker(maxChunks, nil), 0, nil)
}

func TestIndexer_AnalyzeCodebase(t *testing.T) {
	dir := fixture(t)

	cb, err := newIndexer(0).AnalyzeCodebase(context.Background(), dir, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, cb.FilesFound)
	assert.Equal(t, []string{"a.py", "sub/c.py"}, cb.Files)
	assert.Equal(t, []string{"build"}, cb.Skipped)

	require.Len(t, cb.Errors, 1)
	assert.Equal(t, "b.py", cb.Errors[0].File)
	assert.Contains(t, cb.Errors[0].Error, "line 1")

	require.Len(t, cb.Classes, 1)
	assert.Equal(t, "Repo", cb.Classes[0].Name)
	assert.Equal(t, "a.py", cb.Classes[0].File)

	var ids []string
	for _, f := range cb.Functions {
		ids = append(ids, f.File+":"+f.Identifier)
	}
	assert.Equal(t, []string{"a.py:Repo.save", "a.py:persist", "sub/c.py:run"}, ids)

	require.Len(t, cb.Standalone, 2)
	assert.Equal(t, "persist", cb.Standalone[0].Name)

	for _, e := range cb.Calls {
		assert.NotEmpty(t, e.File)
	}
	assert.Len(t, cb.Calls, 3)
	assert.Len(t, cb.Trees, 2)
}

func TestIndexer_AnalyzeCodebase_MaxFiles(t *testing.T) {
	dir := fixture(t)

	cb, err := newIndexer(0).AnalyzeCodebase(context.Background(), dir, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, cb.FilesFound)
	assert.Equal(t, []string{"a.py"}, cb.Files)
	assert.Empty(t, cb.Errors)
}

func TestIndexer_AnalyzeCodebase_BadRoot(t *testing.T) {
	_, err := newIndexer(0).AnalyzeCodebase(context.Background(), filepath.Join(t.TempDir(), "missing"), 0)
	assert.ErrorIs(t, err, crawler.ErrNotDirectory)
}

func TestIndexer_ChunkCodebase(t *testing.T) {
	dir := fixture(t)

	set, err := newIndexer(0).ChunkCodebase(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "sub/c.py"}, set.Files)
	require.Len(t, set.Errors, 1)
	assert.Equal(t, "b.py", set.Errors[0].File)

	var names []string
	for _, c := range set.Chunks {
		names = append(names, c.File+":"+c.Name)
	}
	assert.Equal(t, []string{"a.py:Repo", "a.py:save", "a.py:persist", "a.py:global_scope", "sub/c.py:run"}, names)

	t.Run("chunk limit spans files", func(t *testing.T) {
		set, err := newIndexer(2).ChunkCodebase(context.Background(), dir, 0)
		require.NoError(t, err)
		assert.Len(t, set.Chunks, 2)
		assert.Equal(t, []string{"a.py"}, set.Files)
	})
}
