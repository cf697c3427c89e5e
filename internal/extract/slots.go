package extract

import (
	"context"
	"fmt"
	"strings"
)

// SourceResult describes what one implementation file contributed.
type SourceResult struct {
	Path      string
	FormNames int
	Slots     []SlotRecord
	SlotTypes []SlotTypeRecord
	// Unresolved lists slot map entries whose accepted type or slot index
	// could not be resolved.
	Unresolved []string
	// UnknownClasses lists slot tables whose owning class is not registered.
	UnknownClasses []string
}

// slotIndex maps the 1-based position of a slot in its table to its id.
type slotIndex map[int]int64

// SlotTableBuilder scans implementation files for form names, slot tables and
// slot maps. Namespaces in implementation files are only ever opened; the
// closing braces are not tracked.
type SlotTableBuilder struct {
	store    Store
	resolver *Resolver
	seq      *Sequences
}

// NewSlotTableBuilder creates a builder writing to store with ids from seq.
func NewSlotTableBuilder(store Store, resolver *Resolver, seq *Sequences) *SlotTableBuilder {
	return &SlotTableBuilder{
		store:    store,
		resolver: resolver,
		seq:      seq,
	}
}

// sourceScan is the per-file state.
type sourceScan struct {
	path    string
	lines   []string
	tracker *NamespaceTracker
	// tables is keyed by the class name as written in BEGIN_SLOTTABLE; a later
	// table for the same name replaces the earlier one.
	tables map[string]slotIndex
	result *SourceResult
}

// ScanSource processes the comment-stripped lines of the implementation file
// at path.
func (b *SlotTableBuilder) ScanSource(ctx context.Context, path string, lines []string) (*SourceResult, error) {
	scan := &sourceScan{
		path:    path,
		lines:   lines,
		tracker: NewNamespaceTracker(),
		tables:  make(map[string]slotIndex),
		result:  &SourceResult{Path: path},
	}

	var err error
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.Contains(line, namespaceKeyword) && !IsUsingDirective(line):
			if name, ok := NamespaceOpen(line); ok {
				scan.tracker.Open(name)
			}
		case strings.Contains(line, ImplementMarker):
			err = b.formName(ctx, scan, line)
		case strings.Contains(line, SlotTableBeginMarker):
			i, err = b.slotTable(ctx, scan, i)
		case strings.Contains(line, SlotMapBeginMarker):
			i, err = b.slotMap(ctx, scan, i)
		}
		if err != nil {
			return nil, err
		}
	}
	return scan.result, nil
}

func (b *SlotTableBuilder) formName(ctx context.Context, scan *sourceScan, line string) error {
	class, form, ok := ImplementMacro(line)
	if !ok {
		return nil
	}
	name := scan.tracker.Qualify(class)
	if err := b.store.UpdateClassFormName(ctx, name, form); err != nil {
		return fmt.Errorf("failed to set form name of %s: %w", name, err)
	}
	scan.result.FormNames++
	return nil
}

// slotTable handles a BEGIN_SLOTTABLE block starting at line start and returns
// the index of the last line it consumed.
func (b *SlotTableBuilder) slotTable(ctx context.Context, scan *sourceScan, start int) (int, error) {
	class, ok := MacroArgument(scan.lines[start])
	if !ok {
		return start, nil
	}
	qualified := scan.tracker.Qualify(class)

	classID, found, err := b.store.FindClassIDByName(ctx, qualified)
	if err != nil {
		return start, fmt.Errorf("failed to look up slot table owner %s: %w", qualified, err)
	}
	if !found {
		scan.result.UnknownClasses = append(scan.result.UnknownClasses, qualified)
		return start, nil
	}

	index := make(slotIndex)
	position := 0
	i := start + 1
	for ; i < len(scan.lines) && !strings.Contains(scan.lines[i], SlotTableEndMarker); i++ {
		for _, name := range QuotedStrings(scan.lines[i]) {
			position++
			rec := SlotRecord{
				SlotID:        b.seq.NextSlotID(),
				SlotName:      name,
				ParentClassID: classID,
			}
			if err := b.store.InsertSlot(ctx, rec); err != nil {
				return i, fmt.Errorf("failed to insert slot %s of %s: %w", name, qualified, err)
			}
			index[position] = rec.SlotID
			scan.result.Slots = append(scan.result.Slots, rec)
		}
	}
	scan.tables[class] = index
	return i, nil
}

// slotMap handles a BEGIN_SLOT_MAP block starting at line start and returns
// the index of the last line it consumed. The block is consumed even when no
// slot table is known for the class.
func (b *SlotTableBuilder) slotMap(ctx context.Context, scan *sourceScan, start int) (int, error) {
	class, _ := MacroArgument(scan.lines[start])
	index, known := scan.tables[class]

	i := start + 1
	for ; i < len(scan.lines) && !strings.Contains(scan.lines[i], SlotMapEndMarker); i++ {
		position, typeName, ok := SlotMapEntry(scan.lines[i])
		if !ok || !known {
			continue
		}
		slotID, ok := index[position]
		if !ok {
			scan.result.Unresolved = append(scan.result.Unresolved, fmt.Sprintf("%s[%d]", class, position))
			continue
		}

		classID, ok, err := b.resolver.ResolveReference(ctx, typeName, scan.tracker.Stack())
		if err != nil {
			return i, fmt.Errorf("failed to resolve slot type %s: %w", typeName, err)
		}
		if !ok {
			scan.result.Unresolved = append(scan.result.Unresolved, typeName)
			continue
		}

		rec := SlotTypeRecord{SlotID: slotID, ClassID: classID}
		if err := b.store.InsertSlotType(ctx, rec); err != nil {
			return i, fmt.Errorf("failed to insert slot type for slot %d: %w", slotID, err)
		}
		scan.result.SlotTypes = append(scan.result.SlotTypes, rec)
	}
	return i, nil
}
