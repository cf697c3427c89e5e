package scanner

import "github.com/mvp-joe/slotscan/internal/extract"

// ProgressReporter provides callbacks for reporting parse progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnPassStart is called before the tree is traversed for a pass.
	OnPassStart(pass extract.Pass)

	// OnDirectory is called when traversal enters a directory.
	OnDirectory(dir string)

	// OnFileProcessed is called after each file of a pass.
	OnFileProcessed(pass extract.Pass, path string)

	// OnPassComplete is called with the number of files the pass visited.
	OnPassComplete(pass extract.Pass, files int)

	// OnComplete is called once the run has finished or was cancelled.
	OnComplete(summary *Summary)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnPassStart(pass extract.Pass)                  {}
func (n *NoOpProgressReporter) OnDirectory(dir string)                         {}
func (n *NoOpProgressReporter) OnFileProcessed(pass extract.Pass, path string) {}
func (n *NoOpProgressReporter) OnPassComplete(pass extract.Pass, files int)    {}
func (n *NoOpProgressReporter) OnComplete(summary *Summary)                    {}
