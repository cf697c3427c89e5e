package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for SlotTableBuilder:
// - IMPLEMENT_ macros set the form name of the qualified class
// - slot tables insert one slot per quoted name, several per line allowed
// - slot maps link the n-th slot of the table to the resolved type
// - unresolved types and out-of-range indices are reported and skipped
// - slot ids keep counting across files
// - slot tables for unknown classes are reported and write nothing
// - a later table for the same class replaces the earlier one
// - "using namespace" lines do not open a scope

const gaugeSource = `#include "Gauge.h"

namespace Eaagles {
namespace Instruments {

IMPLEMENT_SUBCLASS(Gauge, "Gauge")

BEGIN_SLOTTABLE(Gauge)
    "alpha",
    "beta", "gamma",
END_SLOTTABLE(Gauge)

BEGIN_SLOT_MAP(Gauge)
    ON_SLOT(2, setSlotBeta, Basic::Widget)
END_SLOT_MAP()

}
}`

func newSlotBuilder(store *memStore) *SlotTableBuilder {
	return NewSlotTableBuilder(store, NewResolver(store), NewSequences())
}

func TestScanSource_SlotsAndTypes(t *testing.T) {
	t.Parallel()

	store := newMemStore("Eaagles::Instruments::Gauge", "Eaagles::Basic::Widget")
	b := newSlotBuilder(store)

	res, err := b.ScanSource(context.Background(), "Gauge.cpp", StripCommentsString(gaugeSource))
	require.NoError(t, err)

	assert.Equal(t, 1, res.FormNames)
	gauge := store.class(t, "Eaagles::Instruments::Gauge")
	require.NotNil(t, gauge.FormName)
	assert.Equal(t, "Gauge", *gauge.FormName)

	assert.Equal(t, []SlotRecord{
		{SlotID: 0, SlotName: "alpha", ParentClassID: 0},
		{SlotID: 1, SlotName: "beta", ParentClassID: 0},
		{SlotID: 2, SlotName: "gamma", ParentClassID: 0},
	}, store.slots)
	assert.Equal(t, []SlotTypeRecord{{SlotID: 1, ClassID: 1}}, store.slotTypes)
	assert.Empty(t, res.Unresolved)
	assert.Empty(t, res.UnknownClasses)
}

func TestScanSource_UnresolvedType(t *testing.T) {
	t.Parallel()

	store := newMemStore("Eaagles::Instruments::Gauge")
	b := newSlotBuilder(store)

	res, err := b.ScanSource(context.Background(), "Gauge.cpp", StripCommentsString(gaugeSource))
	require.NoError(t, err)

	assert.Len(t, store.slots, 3)
	assert.Empty(t, store.slotTypes)
	assert.Equal(t, []string{"Basic::Widget"}, res.Unresolved)
}

func TestScanSource_SlotIDsAreGlobal(t *testing.T) {
	t.Parallel()

	store := newMemStore("Eaagles::Instruments::Gauge", "Eaagles::Basic::Widget", "Eaagles::Dial")
	b := newSlotBuilder(store)
	ctx := context.Background()

	_, err := b.ScanSource(ctx, "Gauge.cpp", StripCommentsString(gaugeSource))
	require.NoError(t, err)

	dial := "namespace Eaagles {\nBEGIN_SLOTTABLE(Dial)\n\"radius\",\nEND_SLOTTABLE(Dial)\n}"
	res, err := b.ScanSource(ctx, "Dial.cpp", StripCommentsString(dial))
	require.NoError(t, err)

	assert.Equal(t, []SlotRecord{{SlotID: 3, SlotName: "radius", ParentClassID: 2}}, res.Slots)
}

func TestScanSource_UnqualifiedTypeInCurrentNamespace(t *testing.T) {
	t.Parallel()

	source := `namespace Eaagles {
namespace Basic {
BEGIN_SLOTTABLE(List)
    "values",
END_SLOTTABLE(List)
BEGIN_SLOT_MAP(List)
    ON_SLOT(1, setSlotValues, Number)
END_SLOT_MAP()
}
}`

	store := newMemStore("Eaagles::Basic::List", "Number", "Eaagles::Basic::Number")
	b := newSlotBuilder(store)

	res, err := b.ScanSource(context.Background(), "List.cpp", StripCommentsString(source))
	require.NoError(t, err)

	assert.Equal(t, []SlotTypeRecord{{SlotID: 0, ClassID: 2}}, res.SlotTypes)
}

func TestScanSource_UnknownOwner(t *testing.T) {
	t.Parallel()

	source := `namespace Eaagles {
BEGIN_SLOTTABLE(Missing)
    "ghost",
END_SLOTTABLE(Missing)
BEGIN_SLOT_MAP(Missing)
    ON_SLOT(1, setSlotGhost, Widget)
END_SLOT_MAP()
}`

	store := newMemStore("Eaagles::Widget")
	b := newSlotBuilder(store)

	res, err := b.ScanSource(context.Background(), "Missing.cpp", StripCommentsString(source))
	require.NoError(t, err)

	assert.Equal(t, []string{"Eaagles::Missing"}, res.UnknownClasses)
	assert.Empty(t, store.slots)
	assert.Empty(t, store.slotTypes)
}

func TestScanSource_IndexOutOfRange(t *testing.T) {
	t.Parallel()

	source := `namespace N {
BEGIN_SLOTTABLE(Knob)
    "turn",
END_SLOTTABLE(Knob)
BEGIN_SLOT_MAP(Knob)
    ON_SLOT(5, setSlotFive, Widget)
    ON_SLOT(1, setSlotTurn, Widget)
END_SLOT_MAP()
}`

	store := newMemStore("N::Knob", "N::Widget")
	b := newSlotBuilder(store)

	res, err := b.ScanSource(context.Background(), "Knob.cpp", StripCommentsString(source))
	require.NoError(t, err)

	assert.Equal(t, []string{"Knob[5]"}, res.Unresolved)
	assert.Equal(t, []SlotTypeRecord{{SlotID: 0, ClassID: 1}}, store.slotTypes)
}

func TestScanSource_LaterTableReplacesEarlier(t *testing.T) {
	t.Parallel()

	source := `namespace N {
BEGIN_SLOTTABLE(Knob)
    "first",
END_SLOTTABLE(Knob)
BEGIN_SLOTTABLE(Knob)
    "second",
END_SLOTTABLE(Knob)
BEGIN_SLOT_MAP(Knob)
    ON_SLOT(1, setSlot, Widget)
END_SLOT_MAP()
}`

	store := newMemStore("N::Knob", "N::Widget")
	b := newSlotBuilder(store)

	_, err := b.ScanSource(context.Background(), "Knob.cpp", StripCommentsString(source))
	require.NoError(t, err)

	require.Len(t, store.slots, 2)
	assert.Equal(t, []SlotTypeRecord{{SlotID: 1, ClassID: 1}}, store.slotTypes)
}

func TestScanSource_UsingNamespaceIgnored(t *testing.T) {
	t.Parallel()

	source := "using namespace std;\nnamespace Eaagles {\nusing namespace Basic;\nIMPLEMENT_SUBCLASS(Gauge, \"G\")\n}"

	store := newMemStore("Eaagles::Gauge", "Eaagles::Basic::Gauge")
	b := newSlotBuilder(store)

	res, err := b.ScanSource(context.Background(), "Gauge.cpp", StripCommentsString(source))
	require.NoError(t, err)

	assert.Equal(t, 1, res.FormNames)
	require.NotNil(t, store.class(t, "Eaagles::Gauge").FormName)
	assert.Nil(t, store.class(t, "Eaagles::Basic::Gauge").FormName)
}

func TestScanSource_LookupErrorsPropagate(t *testing.T) {
	t.Parallel()

	store := newMemStore("Eaagles::Instruments::Gauge")
	b := NewSlotTableBuilder(store, NewResolver(failingLookup{}), NewSequences())

	_, err := b.ScanSource(context.Background(), "Gauge.cpp", StripCommentsString(gaugeSource))
	assert.ErrorIs(t, err, errLookupFailed)
}
