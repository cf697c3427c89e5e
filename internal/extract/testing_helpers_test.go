package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store that records every lookup.
type memStore struct {
	classes   []ClassRecord
	slots     []SlotRecord
	slotTypes []SlotTypeRecord
	lookups   []string
}

// newMemStore seeds the store with classes whose ids follow argument order.
func newMemStore(names ...string) *memStore {
	m := &memStore{}
	for i, name := range names {
		m.classes = append(m.classes, ClassRecord{ID: int64(i), QualifiedName: name, SourceFile: "seed.h"})
	}
	return m
}

func (m *memStore) FindClassIDByName(_ context.Context, name string) (int64, bool, error) {
	m.lookups = append(m.lookups, name)
	for _, c := range m.classes {
		if c.QualifiedName == name {
			return c.ID, true, nil
		}
	}
	return 0, false, nil
}

func (m *memStore) InsertClass(_ context.Context, rec ClassRecord) error {
	m.classes = append(m.classes, rec)
	return nil
}

func (m *memStore) UpdateClassFormName(_ context.Context, name, form string) error {
	for i := range m.classes {
		if m.classes[i].QualifiedName == name {
			f := form
			m.classes[i].FormName = &f
		}
	}
	return nil
}

func (m *memStore) UpdateClassBaseclass(_ context.Context, name string, baseID int64) error {
	for i := range m.classes {
		if m.classes[i].QualifiedName == name {
			id := baseID
			m.classes[i].BaseClassID = &id
		}
	}
	return nil
}

func (m *memStore) InsertSlot(_ context.Context, rec SlotRecord) error {
	m.slots = append(m.slots, rec)
	return nil
}

func (m *memStore) InsertSlotType(_ context.Context, rec SlotTypeRecord) error {
	m.slotTypes = append(m.slotTypes, rec)
	return nil
}

// class returns the first class with the given name.
func (m *memStore) class(t *testing.T, name string) ClassRecord {
	t.Helper()
	for _, c := range m.classes {
		if c.QualifiedName == name {
			return c
		}
	}
	require.Failf(t, "class not registered", "%s", name)
	return ClassRecord{}
}

var errLookupFailed = errors.New("lookup failed")

// failingLookup fails every lookup.
type failingLookup struct{}

func (failingLookup) FindClassIDByName(context.Context, string) (int64, bool, error) {
	return 0, false, errLookupFailed
}

// StripCommentsString runs the comment stripper over an in-memory text.
func StripCommentsString(text string) []string {
	s := &commentStripper{}
	for _, line := range strings.Split(text, "\n") {
		s.feed(line)
	}
	return s.lines
}
