package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/slotscan/internal/extract"
	"github.com/mvp-joe/slotscan/internal/scanner"
)

// passDescriptions label the progress bar of each pass.
var passDescriptions = map[extract.Pass]string{
	extract.PassClasses:     "Registering classes",
	extract.PassBaseClasses: "Linking base classes",
	extract.PassSlots:       "Reading slot tables",
}

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	out     io.Writer
	quiet   bool
	verbose bool
	bar     *progressbar.ProgressBar
}

var _ scanner.ProgressReporter = (*CLIProgressReporter)(nil)

// NewCLIProgressReporter creates a new CLI progress reporter. Bars go to
// stderr; pass results and the summary go to out.
func NewCLIProgressReporter(out io.Writer, quiet, verbose bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		out:     out,
		quiet:   quiet,
		verbose: verbose,
	}
}

func (c *CLIProgressReporter) OnPassStart(pass extract.Pass) {
	if c.quiet {
		return
	}
	// The file count is unknown until the walk ends, so the bar is a spinner.
	c.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(passDescriptions[pass]),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (c *CLIProgressReporter) OnDirectory(dir string) {
	if c.verbose && !c.quiet {
		log.Printf("Scanning %s", dir)
	}
}

func (c *CLIProgressReporter) OnFileProcessed(pass extract.Pass, path string) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		c.bar.Add(1)
	}
}

func (c *CLIProgressReporter) OnPassComplete(pass extract.Pass, files int) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	fmt.Fprintf(c.out, "✓ %s: %s files\n", passDescriptions[pass], formatNumber(files))
}

func (c *CLIProgressReporter) OnComplete(summary *scanner.Summary) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	printSummary(c.out, summary, c.verbose)
}

// printSummary writes the result of a run. Unresolved names are listed only
// in verbose mode; failures and warnings always are.
func printSummary(w io.Writer, s *scanner.Summary, verbose bool) {
	fmt.Fprintln(w)
	if s.Cancelled {
		fmt.Fprintln(w, "Parsing stopped")
		return
	}

	fmt.Fprintf(w, "Files parsed: %s (in %.1fs)\n", formatNumber(s.FilesParsed()), s.Duration.Seconds())
	fmt.Fprintf(w, "  Classes:    %s (%s with a base, %s with a form name)\n",
		formatNumber(s.Classes), formatNumber(s.BaseLinks), formatNumber(s.FormNames))
	fmt.Fprintf(w, "  Slots:      %s\n", formatNumber(s.Slots))
	fmt.Fprintf(w, "  Slot types: %s\n", formatNumber(s.SlotTypes))

	if len(s.Unresolved) > 0 {
		fmt.Fprintf(w, "  Unresolved: %s\n", formatNumber(len(s.Unresolved)))
		if verbose {
			printList(w, s.Unresolved)
		}
	}
	if len(s.UnknownClasses) > 0 {
		fmt.Fprintf(w, "  Slot tables of unknown classes: %s\n", formatNumber(len(s.UnknownClasses)))
		if verbose {
			printList(w, s.UnknownClasses)
		}
	}
	if len(s.FilesFailed) > 0 {
		fmt.Fprintf(w, "Failed to read %s files:\n", formatNumber(len(s.FilesFailed)))
		printList(w, s.FilesFailed)
	}
	if len(s.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings:\n")
		printList(w, s.Warnings)
	}
}

func printList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "    %s\n", item)
	}
}

// formatNumber adds thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
