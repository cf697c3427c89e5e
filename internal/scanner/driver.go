package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/slotscan/internal/extract"
)

// ErrRootNotDirectory is returned when the root of a run is not a directory.
var ErrRootNotDirectory = errors.New("root is not a directory")

// Store is what the Driver writes to.
type Store interface {
	extract.Store
	EnsureSchema(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// Options configures a Driver.
type Options struct {
	// HeaderExtensions select the files of both header passes.
	HeaderExtensions []string
	// SourceExtensions select the files of the slot pass.
	SourceExtensions []string
	// SkipOutermostScope is passed to the name resolver.
	SkipOutermostScope bool
}

// Driver runs the three passes over a source tree:
//
//  1. headers, registering classes;
//  2. headers again, resolving base classes;
//  3. implementation files, collecting form names, slots and slot types.
//
// Every run starts from empty tables with id counters at zero, so running
// twice over the same tree produces identical tables.
type Driver struct {
	store    Store
	walker   DirWalker
	opts     Options
	progress ProgressReporter
}

// NewDriver creates a Driver. A nil progress reporter is replaced by a
// NoOpProgressReporter.
func NewDriver(store Store, walker DirWalker, opts Options, progress ProgressReporter) *Driver {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	return &Driver{
		store:    store,
		walker:   walker,
		opts:     opts,
		progress: progress,
	}
}

// run is the state of one Run call.
type run struct {
	summary *Summary
	classes *extract.ClassTableBuilder
	slots   *extract.SlotTableBuilder
	// failed and warned hold paths already reported, so that a file failing
	// in several passes is reported once.
	failed map[string]bool
	warned map[string]bool
}

// Run extracts root into the store. Cancelling ctx stops the traversal at the
// next directory or file, clears all three tables and returns a summary with
// Cancelled set and a nil error. Store failures abort the run.
func (d *Driver) Run(ctx context.Context, root string) (*Summary, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrRootNotDirectory)
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		Root:      root,
		StartedAt: time.Now(),
	}

	// The tables are emptied even when ctx is already cancelled.
	setup := context.WithoutCancel(ctx)
	if err := d.store.EnsureSchema(setup); err != nil {
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}
	if err := d.store.ClearAll(setup); err != nil {
		return nil, fmt.Errorf("failed to clear tables: %w", err)
	}

	seq := extract.NewSequences()
	resolver := extract.NewResolver(d.store)
	resolver.SkipOutermostScope = d.opts.SkipOutermostScope

	r := &run{
		summary: summary,
		classes: extract.NewClassTableBuilder(d.store, resolver, seq),
		slots:   extract.NewSlotTableBuilder(d.store, resolver, seq),
		failed:  make(map[string]bool),
		warned:  make(map[string]bool),
	}

	for _, pass := range []extract.Pass{extract.PassClasses, extract.PassBaseClasses, extract.PassSlots} {
		d.progress.OnPassStart(pass)

		files, err := d.walk(ctx, r, root, pass)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return d.cancel(ctx, summary)
			}
			return nil, err
		}

		switch pass {
		case extract.PassClasses:
			summary.HeaderFiles = files
		case extract.PassBaseClasses:
			summary.BaseClassFiles = files
		case extract.PassSlots:
			summary.SourceFiles = files
		}
		d.progress.OnPassComplete(pass, files)
	}

	summary.Duration = time.Since(summary.StartedAt)
	d.progress.OnComplete(summary)
	return summary, nil
}

// cancel clears the partial output of a cancelled run.
func (d *Driver) cancel(ctx context.Context, summary *Summary) (*Summary, error) {
	if err := d.store.ClearAll(context.WithoutCancel(ctx)); err != nil {
		return nil, fmt.Errorf("failed to clear tables after cancellation: %w", err)
	}
	summary.Cancelled = true
	summary.Duration = time.Since(summary.StartedAt)
	d.progress.OnComplete(summary)
	return summary, nil
}

// walk visits the matching files of dir, then recurses into its
// subdirectories, and returns the number of files read. Unreadable files are
// not counted.
func (d *Driver) walk(ctx context.Context, r *run, dir string, pass extract.Pass) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.progress.OnDirectory(dir)

	exts := d.opts.HeaderExtensions
	if pass == extract.PassSlots {
		exts = d.opts.SourceExtensions
	}

	files, err := d.walker.ListFiles(dir, exts)
	if err != nil {
		d.fail(r, dir, err)
		return 0, nil
	}

	count := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		read, err := d.visit(ctx, r, path, pass)
		if err != nil {
			return count, err
		}
		if read {
			count++
		}
		d.progress.OnFileProcessed(pass, path)
	}

	subdirs, err := d.walker.ListSubdirectories(dir)
	if err != nil {
		d.fail(r, dir, err)
		return count, nil
	}
	for _, sub := range subdirs {
		n, err := d.walk(ctx, r, sub, pass)
		count += n
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// visit reads one file and hands its comment-stripped lines to the builder of
// the pass. It reports whether the file could be read. Only store errors and
// cancellation are returned.
func (d *Driver) visit(ctx context.Context, r *run, path string, pass extract.Pass) (bool, error) {
	lines, err := readLines(path)
	if err != nil {
		d.fail(r, path, err)
		return false, nil
	}

	if pass == extract.PassSlots {
		res, err := r.slots.ScanSource(ctx, path, lines)
		if err != nil {
			return true, err
		}
		r.summary.FormNames += res.FormNames
		r.summary.Slots += len(res.Slots)
		r.summary.SlotTypes += len(res.SlotTypes)
		r.summary.Unresolved = appendRefs(r.summary.Unresolved, path, res.Unresolved)
		r.summary.UnknownClasses = appendRefs(r.summary.UnknownClasses, path, res.UnknownClasses)
		return true, nil
	}

	res, err := r.classes.ScanHeader(ctx, path, lines, pass)
	if err != nil {
		var perr *extract.ParseError
		if errors.As(err, &perr) {
			d.warn(r, path, perr)
			return true, nil
		}
		return true, err
	}

	switch pass {
	case extract.PassClasses:
		if res.Skipped {
			r.summary.SkippedHeaders++
		}
		r.summary.Classes += len(res.Classes)
	case extract.PassBaseClasses:
		r.summary.BaseLinks += res.BaseLinks
		r.summary.Unresolved = appendRefs(r.summary.Unresolved, path, res.Unresolved)
	}
	return true, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return extract.StripComments(f)
}

func (d *Driver) fail(r *run, path string, err error) {
	if r.failed[path] {
		return
	}
	r.failed[path] = true
	log.Printf("Warning: failed to read %s: %v", path, err)
	r.summary.FilesFailed = append(r.summary.FilesFailed, path)
}

func (d *Driver) warn(r *run, path string, err error) {
	if r.warned[path] {
		return
	}
	r.warned[path] = true
	log.Printf("Warning: skipping %v", err)
	r.summary.Warnings = append(r.summary.Warnings, err.Error())
}

func appendRefs(dst []string, path string, names []string) []string {
	for _, name := range names {
		dst = append(dst, path+": "+name)
	}
	return dst
}
