package storage

// Test Plan for parse runs:
// - LatestRun returns (nil, nil) before any run
// - RecordRun round trips every field, durations at millisecond precision
// - LatestRun picks the most recently started run
// - RecordRun updates cache_metadata.last_parsed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuns_RecordAndLatest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewTestStore(t)

	run, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, run)

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := &RunRecord{ID: "run-old", Root: "/src", StartedAt: first, Duration: 2 * time.Second}
	newer := &RunRecord{
		ID:          "run-new",
		Root:        "/src",
		StartedAt:   first.Add(time.Hour),
		Duration:    1500 * time.Millisecond,
		HeaderFiles: 4,
		SourceFiles: 3,
		Classes:     12,
		Slots:       7,
		SlotTypes:   5,
		Unresolved:  2,
		FilesFailed: 1,
		Cancelled:   true,
	}
	require.NoError(t, s.RecordRun(ctx, newer))
	require.NoError(t, s.RecordRun(ctx, older))

	run, err = s.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, newer, run)

	var lastParsed string
	err = s.DB().QueryRow("SELECT value FROM cache_metadata WHERE key = 'last_parsed'").Scan(&lastParsed)
	require.NoError(t, err)
	assert.Equal(t, first.Format(time.RFC3339), lastParsed, "last_parsed follows the most recent RecordRun call")
}
