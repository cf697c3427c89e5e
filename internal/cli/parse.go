package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/slotscan/internal/scanner"
	"github.com/mvp-joe/slotscan/internal/storage"
	"github.com/mvp-joe/slotscan/internal/watcher"
)

var (
	quietFlag bool
	watchFlag bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [dir]",
	Short: "Extract classes, slots and slot types into the database",
	Long: `Parse walks a C++ source tree in three passes:
  1. headers, registering every class declared inside a namespace
  2. headers again, linking each class to its base class
  3. implementation files, reading form names, slot tables and slot maps

Every run rebuilds the tables from scratch, so parsing the same tree twice
produces identical results. Press Ctrl+C to stop; a stopped run leaves the
tables empty.

Examples:
  # Parse the current directory
  slotscan parse

  # Parse another tree into a specific database
  slotscan parse /src/eaagles --db /tmp/eaagles.db

  # Reparse whenever a header or source file changes
  slotscan parse --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and print only the final line")
	parseCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and reparse")
}

func runParse(cmd *cobra.Command, args []string) error {
	// Ctrl+C cancels the run in progress.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := loadProject(firstArg(args))
	if err != nil {
		return err
	}

	store, err := p.openStore(false)
	if err != nil {
		return err
	}
	defer store.DB().Close()

	session, err := newParseSession(p, store, cmd.OutOrStdout(), quietFlag)
	if err != nil {
		return err
	}

	if _, err := session.parse(ctx); err != nil {
		return err
	}
	if !watchFlag || ctx.Err() != nil {
		return nil
	}
	return session.watch(ctx)
}

// parseSession runs the driver over one project, possibly repeatedly.
type parseSession struct {
	project *project
	store   *storage.Store
	cached  *storage.CachedStore
	walker  *scanner.FSWalker
	driver  *scanner.Driver
	out     io.Writer
	quiet   bool
}

func newParseSession(p *project, store *storage.Store, out io.Writer, quiet bool) (*parseSession, error) {
	cached, err := storage.NewCachedStore(store, p.config.Storage.LookupCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}

	walker, err := scanner.NewFSWalker(p.root, p.config.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create walker: %w", err)
	}

	opts := scanner.Options{
		HeaderExtensions:   p.config.Paths.Headers,
		SourceExtensions:   p.config.Paths.Sources,
		SkipOutermostScope: p.config.Resolver.SkipOutermostScope,
	}
	progress := NewCLIProgressReporter(out, quiet, verbose)

	return &parseSession{
		project: p,
		store:   store,
		cached:  cached,
		walker:  walker,
		driver:  scanner.NewDriver(cached, walker, opts, progress),
		out:     out,
		quiet:   quiet,
	}, nil
}

// parse runs the driver once and records the run. A cancelled run is not an
// error.
func (s *parseSession) parse(ctx context.Context) (*scanner.Summary, error) {
	summary, err := s.driver.Run(ctx, s.project.root)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}

	if err := s.store.RecordRun(context.WithoutCancel(ctx), summary.Record()); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	if s.quiet {
		if summary.Cancelled {
			fmt.Fprintln(s.out, "Parsing stopped")
		} else {
			fmt.Fprintf(s.out, "Files parsed: %d\n", summary.FilesParsed())
		}
	}

	if verbose {
		hits, misses := s.cached.CacheStats()
		log.Printf("Lookup cache: %d hits, %d misses", hits, misses)
	}
	return summary, nil
}

// watch reparses the whole tree after every batch of changes until ctx is
// cancelled.
func (s *parseSession) watch(ctx context.Context) error {
	exts := append(append([]string{}, s.project.config.Paths.Headers...), s.project.config.Paths.Sources...)
	fw, err := watcher.New(s.project.root, watcher.Options{
		Extensions: exts,
		Debounce:   time.Duration(s.project.config.Watch.DebounceMs) * time.Millisecond,
		Skip:       s.walker.Ignored,
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if !s.quiet {
		log.Println("Watching for changes...")
	}
	err = fw.Run(ctx, func(ctx context.Context, files []string) {
		if !s.quiet {
			log.Printf("%d file(s) changed, reparsing", len(files))
		}
		if _, err := s.parse(ctx); err != nil {
			log.Printf("Warning: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}

	if !s.quiet {
		log.Println("Watch mode stopped")
	}
	return nil
}
