package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/slotscan/internal/scanner"
)

// Test Plan for progress output:
// - printSummary reports counts, failures and warnings
// - unresolved names are listed only in verbose mode
// - a cancelled run prints only "Parsing stopped"
// - a quiet reporter prints nothing
// - formatNumber adds thousands separators

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	summary := &scanner.Summary{
		Duration:    1500 * time.Millisecond,
		HeaderFiles: 1200,
		SourceFiles: 34,
		Classes:     7,
		BaseLinks:   5,
		FormNames:   3,
		Slots:       12,
		SlotTypes:   9,
		Unresolved:  []string{"Gauge.h: std::exception"},
		FilesFailed: []string{"/src/locked.h"},
		Warnings:    []string{"/src/Bad.h:3: unbalanced braces"},
	}

	var out bytes.Buffer
	printSummary(&out, summary, false)
	text := out.String()
	assert.Contains(t, text, "Files parsed: 1,234 (in 1.5s)")
	assert.Contains(t, text, "Classes:    7 (5 with a base, 3 with a form name)")
	assert.Contains(t, text, "Slots:      12")
	assert.Contains(t, text, "Slot types: 9")
	assert.Contains(t, text, "Unresolved: 1")
	assert.NotContains(t, text, "std::exception")
	assert.Contains(t, text, "Failed to read 1 files:\n    /src/locked.h")
	assert.Contains(t, text, "Warnings:\n    /src/Bad.h:3: unbalanced braces")

	out.Reset()
	printSummary(&out, summary, true)
	assert.Contains(t, out.String(), "    Gauge.h: std::exception")
}

func TestPrintSummary_Cancelled(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printSummary(&out, &scanner.Summary{Cancelled: true, Classes: 3}, true)
	assert.Equal(t, "\nParsing stopped\n", out.String())
}

func TestCLIProgressReporter_Quiet(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := NewCLIProgressReporter(&out, true, true)
	r.OnPassStart(0)
	r.OnDirectory("/src")
	r.OnFileProcessed(0, "/src/a.h")
	r.OnPassComplete(0, 1)
	r.OnComplete(&scanner.Summary{})
	assert.Empty(t, out.String())
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
