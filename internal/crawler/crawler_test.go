package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCrawler_Discover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "lib/util.py", "def helper(): pass")
	writeFile(t, dir, "lib/notes.txt", "not python")
	writeFile(t, dir, ".hidden.py", "secret")
	writeFile(t, dir, "node_modules/pkg.py", "pass")
	writeFile(t, dir, "__pycache__/cached.py", "pass")
	writeFile(t, dir, ".venv/lib/site.py", "pass")
	writeFile(t, dir, "pkg.egg-info/meta.py", "pass")
	writeFile(t, dir, "generated/out.py", "pass")
	writeFile(t, dir, "scratch.py", "pass")
	writeFile(t, dir, ".gitignore", "generated/\nscratch.py\n")

	d, err := NewCrawler(nil).Discover(dir, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"lib/util.py", "main.py"}, d.Files)
	assert.Equal(t, 2, d.Found)
	assert.ElementsMatch(t, []string{".venv", "__pycache__", "generated", "node_modules", "pkg.egg-info"}, d.Skipped)
}

func TestCrawler_MaxFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		writeFile(t, dir, name, "pass")
	}

	d, err := NewCrawler(nil).Discover(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py"}, d.Files)
	assert.Equal(t, 3, d.Found)
}

func TestCrawler_InvalidRoot(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "x.py", "pass")

	_, err := NewCrawler(nil).Discover(filepath.Join(dir, "missing"), 0)
	assert.True(t, errors.Is(err, ErrNotDirectory))

	_, err = NewCrawler(nil).Discover(file, 0)
	assert.True(t, errors.Is(err, ErrNotDirectory))
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()

	t.Run("utf8", func(t *testing.T) {
		path := writeFile(t, dir, "u.py", "name = 'café'\n")
		src, err := ReadSource(path, 0)
		require.NoError(t, err)
		assert.Equal(t, "name = 'café'\n", string(src))
	})

	t.Run("latin1 fallback", func(t *testing.T) {
		path := filepath.Join(dir, "l.py")
		require.NoError(t, os.WriteFile(path, []byte("name = 'caf\xe9'\n"), 0o644))
		src, err := ReadSource(path, 0)
		require.NoError(t, err)
		assert.Equal(t, "name = 'café'\n", string(src))
	})

	t.Run("too large", func(t *testing.T) {
		path := writeFile(t, dir, "big.py", "x = 1\n")
		_, err := ReadSource(path, 3)
		assert.True(t, errors.Is(err, ErrFileTooLarge))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := ReadSource(filepath.Join(dir, "nope.py"), 0)
		assert.Error(t, err)
	})
}
