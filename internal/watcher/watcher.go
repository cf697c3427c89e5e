// Package watcher reports changes to header and implementation files under a
// source tree, batched and debounced, so that `parse --watch` can rerun the
// extraction.
package watcher

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyStarted is returned by Run when the watcher is already running.
var ErrAlreadyStarted = errors.New("watcher already started")

// Options configures a FileWatcher.
type Options struct {
	// Extensions are the file name suffixes that trigger a change, e.g. ".h".
	Extensions []string
	// Debounce is the quiet period after the last event before a batch fires.
	Debounce time.Duration
	// Skip reports paths (files or directories) to leave unwatched.
	Skip func(path string) bool
}

// FileWatcher watches a directory tree recursively. New directories are
// added as they appear.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	root    string
	opts    Options

	mu      sync.Mutex
	pending map[string]bool
	running bool
}

// New creates a FileWatcher over root. root must be a readable directory.
func New(root string, opts Options) (*FileWatcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		root:    root,
		opts:    opts,
		pending: make(map[string]bool),
	}

	if err := fw.addDirectoriesRecursively(root); err != nil {
		watcher.Close()
		return nil, err
	}
	return fw, nil
}

// Run delivers batches of changed files to onChange until ctx is done, then
// closes the watcher. Files in a batch are unique and sorted. onChange runs on
// the watch goroutine; events arriving meanwhile are batched for the next
// call.
func (fw *FileWatcher) Run(ctx context.Context, onChange func(ctx context.Context, files []string)) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return ErrAlreadyStarted
	}
	fw.running = true
	fw.mu.Unlock()

	defer fw.watcher.Close()

	timer := time.NewTimer(fw.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !fw.handleEvent(event) {
				continue
			}
			timer.Reset(fw.opts.Debounce)

		case <-timer.C:
			if files := fw.drain(); len(files) > 0 {
				onChange(ctx, files)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleEvent registers new directories and records matching files. It
// reports whether the event should restart the debounce period.
func (fw *FileWatcher) handleEvent(event fsnotify.Event) bool {
	if fw.skip(event.Name) {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.addDirectoriesRecursively(event.Name); err != nil {
				log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
			}
			return false
		}
	}

	// Only care about WRITE, CREATE, REMOVE and RENAME events
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !fw.matches(event.Name) {
		return false
	}

	fw.mu.Lock()
	fw.pending[event.Name] = true
	fw.mu.Unlock()
	return true
}

// drain returns and clears the pending files.
func (fw *FileWatcher) drain() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	files := make([]string, 0, len(fw.pending))
	for file := range fw.pending {
		files = append(files, file)
	}
	fw.pending = make(map[string]bool)
	sort.Strings(files)
	return files
}

func (fw *FileWatcher) matches(path string) bool {
	name := filepath.Base(path)
	for _, ext := range fw.opts.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) skip(path string) bool {
	return fw.opts.Skip != nil && fw.opts.Skip(path)
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (fw *FileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// If it's the root path, fail immediately
			if path == rootPath {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.root && fw.skip(path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
