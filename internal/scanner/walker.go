package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/slotscan/internal/config"
)

// DataDir is never traversed.
const DataDir = config.DataDir

// DirWalker lists the contents of one directory. Both listings are sorted by
// name.
type DirWalker interface {
	// ListSubdirectories returns the full paths of the subdirectories of dir.
	ListSubdirectories(dir string) ([]string, error)
	// ListFiles returns the full paths of the regular files in dir whose name
	// ends in one of exts.
	ListFiles(dir string, exts []string) ([]string, error)
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FSWalker is a DirWalker over the local file system. Paths matching an ignore
// pattern (relative to root, '/' separated) are left out of both listings.
// Symbolic links are not followed.
type FSWalker struct {
	root           string
	ignorePatterns []compiledPattern
}

// NewFSWalker compiles the ignore patterns for a walk rooted at root.
func NewFSWalker(root string, ignorePatterns []string) (*FSWalker, error) {
	w := &FSWalker{root: root}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		w.ignorePatterns = append(w.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}
	return w, nil
}

func (w *FSWalker) ListSubdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if w.Ignored(path) {
			continue
		}
		dirs = append(dirs, path)
	}
	return dirs, nil
}

func (w *FSWalker) ListFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !hasExtension(entry.Name(), exts) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if w.Ignored(path) {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// Ignored reports whether path is inside the data directory or matches an
// ignore pattern.
func (w *FSWalker) Ignored(path string) bool {
	relPath, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	if relPath == DataDir || strings.HasPrefix(relPath, DataDir+"/") {
		return true
	}

	for _, cp := range w.ignorePatterns {
		// "build/**" also ignores the directory "build" itself.
		if cp.glob.Match(relPath) || cp.glob.Match(relPath+"/**") {
			return true
		}
	}
	return false
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
