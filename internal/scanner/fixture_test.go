package scanner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/slotscan/internal/extract"
)

// Test Plan for the testdata/cpp tree:
// - header guards, includes, access specifiers and method bodies are ignored
// - a commented-out class is not registered, a class outside a namespace neither
// - unqualified and partially qualified slot types resolve through the namespace
// - a standard library type is reported unresolved

func TestDriver_CppFixture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, err := filepath.Abs(filepath.Join("..", "..", "testdata", "cpp"))
	require.NoError(t, err)
	d, store := newTestDriver(t, root, nil)

	summary, err := d.Run(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.HeaderFiles)
	assert.Equal(t, 2, summary.SourceFiles)
	assert.Equal(t, 3, summary.Classes)
	assert.Equal(t, 2, summary.BaseLinks)
	assert.Equal(t, 2, summary.FormNames)
	assert.Equal(t, 4, summary.Slots)
	assert.Equal(t, 3, summary.SlotTypes)
	assert.Equal(t, []string{filepath.Join(root, "instruments", "Gauge.cpp") + ": std::exception"}, summary.Unresolved)
	assert.Empty(t, summary.Warnings)
	assert.Empty(t, summary.FilesFailed)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)

	names := make([]string, len(snap.Classes))
	for i, c := range snap.Classes {
		names[i] = c.QualifiedName
	}
	assert.Equal(t, []string{
		"Eaagles::Basic::Number",
		"Eaagles::Basic::Object",
		"Eaagles::Instruments::Gauge",
	}, names)

	assert.Equal(t, []extract.SlotRecord{
		{SlotID: 0, SlotName: "value", ParentClassID: 0},
		{SlotID: 1, SlotName: "minimum", ParentClassID: 2},
		{SlotID: 2, SlotName: "maximum", ParentClassID: 2},
		{SlotID: 3, SlotName: "owner", ParentClassID: 2},
	}, snap.Slots)
	assert.Equal(t, []extract.SlotTypeRecord{
		{SlotID: 0, ClassID: 0},
		{SlotID: 1, ClassID: 0},
		{SlotID: 2, ClassID: 0},
	}, snap.SlotTypes)
}
