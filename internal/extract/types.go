package extract

import "context"

// ClassRecord is one class declaration found in a header.
type ClassRecord struct {
	ID            int64
	QualifiedName string
	FormName      *string
	SourceFile    string
	BaseClassID   *int64
}

// SlotRecord is one named slot from a class's slot table.
type SlotRecord struct {
	SlotID        int64
	SlotName      string
	ParentClassID int64
}

// SlotTypeRecord links a slot to one class type it accepts.
type SlotTypeRecord struct {
	SlotID  int64
	ClassID int64
}

// Pass identifies one traversal of the source tree.
type Pass int

const (
	// PassClasses registers class declarations from headers.
	PassClasses Pass = iota
	// PassBaseClasses resolves base-class links from headers.
	PassBaseClasses
	// PassSlots extracts slot tables and slot maps from implementation files.
	PassSlots
)

func (p Pass) String() string {
	switch p {
	case PassClasses:
		return "classes"
	case PassBaseClasses:
		return "baseclasses"
	case PassSlots:
		return "slots"
	default:
		return "unknown"
	}
}

// ClassLookup finds a class id by exact qualified name. When several classes
// share the name the lowest id wins.
type ClassLookup interface {
	FindClassIDByName(ctx context.Context, qualifiedName string) (int64, bool, error)
}

// Store is the relational store the builders write to.
type Store interface {
	ClassLookup
	InsertClass(ctx context.Context, rec ClassRecord) error
	UpdateClassFormName(ctx context.Context, qualifiedName, formName string) error
	UpdateClassBaseclass(ctx context.Context, qualifiedName string, baseClassID int64) error
	InsertSlot(ctx context.Context, rec SlotRecord) error
	InsertSlotType(ctx context.Context, rec SlotTypeRecord) error
}
