package crawler

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultMaxFiles bounds the number of files taken from one directory tree.
const DefaultMaxFiles = 200

// ErrNotDirectory is returned when the crawl root is missing or a file.
var ErrNotDirectory = errors.New("not a directory")

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	"vendor":        {},
	"site-packages": {},
	"venv":          {},
	"env":           {},
	"build":         {},
	"dist":          {},
	"htmlcov":       {},
	"egg-info":      {},
}

// Discovery is the outcome of a crawl.
type Discovery struct {
	Root string
	// Files holds slash-separated paths relative to Root, in walk order.
	Files []string
	// Found counts every eligible file, including those beyond the limit.
	Found int
	// Skipped lists excluded directories relative to Root.
	Skipped []string
}

// Crawler scans a directory tree for Python sources.
type Crawler struct {
	logger *slog.Logger
}

// NewCrawler creates a new crawler instance.
func NewCrawler(logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{logger: logger}
}

// Discover walks root and returns at most maxFiles Python files. Build,
// dependency, VCS and hidden directories are skipped, as is anything matched
// by the root .gitignore. maxFiles <= 0 selects DefaultMaxFiles.
func (c *Crawler) Discover(root string, maxFiles int) (*Discovery, error) {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	gi := loadGitignore(root)
	d := &Discovery{Root: root, Files: []string{}, Skipped: []string{}}

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Debug("skipping unreadable path", slog.String("path", path), slog.String("error", err.Error()))
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := entry.Name()

		if entry.IsDir() {
			if skipDir(name) || (gi != nil && gi.MatchesPath(rel+"/")) {
				d.Skipped = append(d.Skipped, rel)
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || entry.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if filepath.Ext(name) != ".py" {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		d.Found++
		if len(d.Files) < maxFiles {
			d.Files = append(d.Files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("crawl finished",
		slog.String("root", root),
		slog.Int("found", d.Found),
		slog.Int("taken", len(d.Files)),
		slog.Int("skipped_dirs", len(d.Skipped)))
	return d, nil
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".egg-info") {
		return true
	}
	_, ok := skipDirs[name]
	return ok
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
