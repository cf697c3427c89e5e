package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/slotscan/internal/extract"
)

var classColumns = []string{"c.id", "c.class_name", "c.form_name", "c.file_name", "c.base_class"}

// Snapshot is the full content of the extraction tables, each ordered by key.
type Snapshot struct {
	Classes   []extract.ClassRecord
	Slots     []extract.SlotRecord
	SlotTypes []extract.SlotTypeRecord
}

// Counts holds the row counts of the extraction tables.
type Counts struct {
	Classes   int
	Slots     int
	SlotTypes int
}

// ListClasses returns every class ordered by id.
func (s *Store) ListClasses(ctx context.Context) ([]extract.ClassRecord, error) {
	rows, err := sq.Select(classColumns...).
		From("classes c").
		OrderBy("c.id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	return scanClasses(rows)
}

// GetClass returns the lowest-id class registered under qualifiedName.
// Returns (nil, nil) if no class has that name.
func (s *Store) GetClass(ctx context.Context, qualifiedName string) (*extract.ClassRecord, error) {
	return s.getClass(ctx, sq.Eq{"c.class_name": qualifiedName}, qualifiedName)
}

// GetClassByID returns the class with the given id.
// Returns (nil, nil) if not found.
func (s *Store) GetClassByID(ctx context.Context, id int64) (*extract.ClassRecord, error) {
	return s.getClass(ctx, sq.Eq{"c.id": id}, fmt.Sprintf("#%d", id))
}

func (s *Store) getClass(ctx context.Context, where sq.Eq, label string) (*extract.ClassRecord, error) {
	rows, err := sq.Select(classColumns...).
		From("classes c").
		Where(where).
		OrderBy("c.id").
		Limit(1).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query class %s: %w", label, err)
	}
	defer rows.Close()

	classes, err := scanClasses(rows)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, nil
	}
	return &classes[0], nil
}

// SubclassesOf returns the classes whose base is classID, ordered by id.
func (s *Store) SubclassesOf(ctx context.Context, classID int64) ([]extract.ClassRecord, error) {
	rows, err := sq.Select(classColumns...).
		From("classes c").
		Where(sq.Eq{"c.base_class": classID}).
		OrderBy("c.id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query subclasses of %d: %w", classID, err)
	}
	defer rows.Close()

	return scanClasses(rows)
}

// SlotsForClass returns the slots owned by classID in table order.
func (s *Store) SlotsForClass(ctx context.Context, classID int64) ([]extract.SlotRecord, error) {
	rows, err := sq.Select("slot_id", "slot_name", "parent_id").
		From("slots").
		Where(sq.Eq{"parent_id": classID}).
		OrderBy("slot_id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots of class %d: %w", classID, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// ListSlots returns every slot ordered by id.
func (s *Store) ListSlots(ctx context.Context) ([]extract.SlotRecord, error) {
	rows, err := sq.Select("slot_id", "slot_name", "parent_id").
		From("slots").
		OrderBy("slot_id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// TypesForSlot returns the classes a slot accepts, ordered by class id.
func (s *Store) TypesForSlot(ctx context.Context, slotID int64) ([]extract.ClassRecord, error) {
	rows, err := sq.Select(classColumns...).
		From("slot_types st").
		Join("classes c ON c.id = st.class_id").
		Where(sq.Eq{"st.slot_id": slotID}).
		OrderBy("c.id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query types of slot %d: %w", slotID, err)
	}
	defer rows.Close()

	return scanClasses(rows)
}

// Snapshot reads all three extraction tables.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	classes, err := s.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.ListSlots(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := sq.Select("slot_id", "class_id").
		From("slot_types").
		OrderBy("slot_id", "class_id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query slot types: %w", err)
	}
	defer rows.Close()

	var slotTypes []extract.SlotTypeRecord
	for rows.Next() {
		var rec extract.SlotTypeRecord
		if err := rows.Scan(&rec.SlotID, &rec.ClassID); err != nil {
			return nil, fmt.Errorf("failed to scan slot type: %w", err)
		}
		slotTypes = append(slotTypes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slot types: %w", err)
	}

	return &Snapshot{Classes: classes, Slots: slots, SlotTypes: slotTypes}, nil
}

// Counts returns the row counts of the extraction tables.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	targets := []struct {
		table string
		dest  *int
	}{
		{"classes", &counts.Classes},
		{"slots", &counts.Slots},
		{"slot_types", &counts.SlotTypes},
	}

	for _, target := range targets {
		err := sq.Select("COUNT(*)").
			From(target.table).
			RunWith(s.db).
			QueryRowContext(ctx).
			Scan(target.dest)
		if err != nil {
			return Counts{}, fmt.Errorf("failed to count %s: %w", target.table, err)
		}
	}
	return counts, nil
}

func scanClasses(rows *sql.Rows) ([]extract.ClassRecord, error) {
	var classes []extract.ClassRecord
	for rows.Next() {
		var (
			rec  extract.ClassRecord
			form sql.NullString
			base sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.QualifiedName, &form, &rec.SourceFile, &base); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		if form.Valid {
			rec.FormName = &form.String
		}
		if base.Valid {
			rec.BaseClassID = &base.Int64
		}
		classes = append(classes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classes: %w", err)
	}
	return classes, nil
}

func scanSlots(rows *sql.Rows) ([]extract.SlotRecord, error) {
	var slots []extract.SlotRecord
	for rows.Next() {
		var rec extract.SlotRecord
		if err := rows.Scan(&rec.SlotID, &rec.SlotName, &rec.ParentClassID); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}
	return slots, nil
}
