package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/slotscan/internal/extract"
)

// Open opens the SQLite database at dbPath with foreign keys enabled. In write
// mode the parent directory is created and the schema is initialized when the
// database is new. In read-only mode the database must already exist.
func Open(dbPath string, readOnly bool) (*sql.DB, error) {
	if readOnly {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s, run 'slotscan parse' first", dbPath)
		}
	} else if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := dbPath
	if readOnly {
		dsn = "file:" + dbPath + "?mode=ro"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pin one connection so the foreign_keys pragma applies to every query.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if !readOnly {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return db, nil
}

// Store writes and reads the classes, slots and slot_types tables. It
// implements extract.Store.
type Store struct {
	db *sql.DB
}

var _ extract.Store = (*Store)(nil)

// NewStore creates a Store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates any missing tables.
func (s *Store) EnsureSchema(_ context.Context) error {
	return CreateSchema(s.db)
}

// ClearAll deletes every row of the three extraction tables in one
// transaction. Run history is kept.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Referencing tables first.
	for _, table := range []string{"slot_types", "slots", "classes"} {
		if _, err := sq.Delete(table).RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

// InsertClass writes a class record. FormName and BaseClassID are written as
// NULL when unset.
func (s *Store) InsertClass(ctx context.Context, rec extract.ClassRecord) error {
	_, err := sq.Insert("classes").
		Columns("id", "class_name", "form_name", "file_name", "base_class").
		Values(rec.ID, rec.QualifiedName, rec.FormName, rec.SourceFile, rec.BaseClassID).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert class %s: %w", rec.QualifiedName, err)
	}
	return nil
}

// UpdateClassFormName sets the form name of every class with the given
// qualified name. Updating a name that is not registered is not an error.
func (s *Store) UpdateClassFormName(ctx context.Context, qualifiedName, formName string) error {
	_, err := sq.Update("classes").
		Set("form_name", formName).
		Where(sq.Eq{"class_name": qualifiedName}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update form name of %s: %w", qualifiedName, err)
	}
	return nil
}

// UpdateClassBaseclass links every class with the given qualified name to
// its base class.
func (s *Store) UpdateClassBaseclass(ctx context.Context, qualifiedName string, baseID int64) error {
	_, err := sq.Update("classes").
		Set("base_class", baseID).
		Where(sq.Eq{"class_name": qualifiedName}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update base class of %s: %w", qualifiedName, err)
	}
	return nil
}

// FindClassIDByName returns the lowest id registered under qualifiedName.
func (s *Store) FindClassIDByName(ctx context.Context, qualifiedName string) (int64, bool, error) {
	var id int64
	err := sq.Select("id").
		From("classes").
		Where(sq.Eq{"class_name": qualifiedName}).
		OrderBy("id").
		Limit(1).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&id)

	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up class %s: %w", qualifiedName, err)
	}
	return id, true, nil
}

// InsertSlot writes a slot record.
func (s *Store) InsertSlot(ctx context.Context, rec extract.SlotRecord) error {
	_, err := sq.Insert("slots").
		Columns("slot_id", "slot_name", "parent_id").
		Values(rec.SlotID, rec.SlotName, rec.ParentClassID).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert slot %s: %w", rec.SlotName, err)
	}
	return nil
}

// InsertSlotType writes an accepted type for a slot.
func (s *Store) InsertSlotType(ctx context.Context, rec extract.SlotTypeRecord) error {
	_, err := sq.Insert("slot_types").
		Columns("slot_id", "class_id").
		Values(rec.SlotID, rec.ClassID).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert slot type %d -> %d: %w", rec.SlotID, rec.ClassID, err)
	}
	return nil
}
