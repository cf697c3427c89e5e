package scanner

import (
	"time"

	"github.com/mvp-joe/slotscan/internal/storage"
)

// Summary reports what a run did.
type Summary struct {
	RunID     string
	Root      string
	StartedAt time.Time
	Duration  time.Duration

	// Files read per pass. Unreadable files appear only in FilesFailed.
	HeaderFiles    int
	BaseClassFiles int
	SourceFiles    int
	// SkippedHeaders counts headers filtered by name or without any class
	// definition, in the first pass.
	SkippedHeaders int

	Classes   int
	BaseLinks int
	FormNames int
	Slots     int
	SlotTypes int

	// Unresolved lists base classes and slot types that matched no class,
	// as "path: name".
	Unresolved []string
	// UnknownClasses lists slot tables whose owner is not registered, as
	// "path: name".
	UnknownClasses []string
	// FilesFailed lists files that could not be read.
	FilesFailed []string
	// Warnings holds at most one message per file, for malformed nesting.
	Warnings []string

	Cancelled bool
}

// FilesParsed is the number of header and source files read successfully.
func (s *Summary) FilesParsed() int {
	return s.HeaderFiles + s.SourceFiles
}

// Record converts the summary to a parse_runs row.
func (s *Summary) Record() *storage.RunRecord {
	return &storage.RunRecord{
		ID:          s.RunID,
		Root:        s.Root,
		StartedAt:   s.StartedAt,
		Duration:    s.Duration,
		HeaderFiles: s.HeaderFiles,
		SourceFiles: s.SourceFiles,
		Classes:     s.Classes,
		Slots:       s.Slots,
		SlotTypes:   s.SlotTypes,
		Unresolved:  len(s.Unresolved),
		FilesFailed: len(s.FilesFailed),
		Cancelled:   s.Cancelled,
	}
}
