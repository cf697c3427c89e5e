package extract

import (
	"context"
	"fmt"
	"strings"
)

// HeaderResult describes what one header contributed to a pass.
type HeaderResult struct {
	Path string
	// Skipped is set for headers filtered by name or without any class
	// definition.
	Skipped bool
	// Classes lists the records registered in PassClasses.
	Classes []ClassRecord
	// BaseLinks counts the base classes resolved in PassBaseClasses.
	BaseLinks int
	// Unresolved lists base specifiers that matched no known class.
	Unresolved []string
}

// ClassTableBuilder scans headers twice: first registering every class
// declared inside a namespace, then, once all classes are known, resolving
// their base classes. Headers can be visited in any order because base links
// are only resolved after the whole tree has been registered.
type ClassTableBuilder struct {
	store    Store
	resolver *Resolver
	seq      *Sequences
}

// NewClassTableBuilder creates a builder writing to store with ids from seq.
func NewClassTableBuilder(store Store, resolver *Resolver, seq *Sequences) *ClassTableBuilder {
	return &ClassTableBuilder{
		store:    store,
		resolver: resolver,
		seq:      seq,
	}
}

type classDecl struct {
	line       int
	name       string
	derived    bool
	base       string
	namespaces []string
}

// ScanHeader processes the comment-stripped lines of the header at path for
// the given pass. A header with malformed namespace nesting returns a
// *ParseError and writes nothing.
func (b *ClassTableBuilder) ScanHeader(ctx context.Context, path string, lines []string, pass Pass) (*HeaderResult, error) {
	result := &HeaderResult{Path: path}

	if SkipHeader(path) || !hasClassDefinition(lines) {
		result.Skipped = true
		return result, nil
	}

	decls, err := scanClassDecls(path, lines)
	if err != nil {
		return nil, err
	}

	switch pass {
	case PassClasses:
		err = b.registerClasses(ctx, path, decls, result)
	case PassBaseClasses:
		err = b.resolveBaseClasses(ctx, decls, result)
	default:
		err = fmt.Errorf("header scan does not support pass %s", pass)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scanClassDecls walks the lines once, tracking namespaces and collecting
// every class definition seen while a namespace is open.
func scanClassDecls(path string, lines []string) ([]classDecl, error) {
	tracker := NewNamespaceTracker()
	var decls []classDecl

	for i, line := range lines {
		if strings.Contains(line, namespaceKeyword) {
			if name, ok := NamespaceOpen(line); ok {
				tracker.Open(name)
			}
			continue
		}
		if !tracker.Active() {
			continue
		}

		switch {
		case strings.Contains(line, "{") && !strings.Contains(line, classKeyword):
			tracker.OpenBrace()
		case strings.Contains(line, "}"):
			if err := tracker.CloseBrace(); err != nil {
				return nil, &ParseError{Path: path, Line: i + 1, Err: err}
			}
		case IsClassDefinition(line):
			tracker.Freeze()
			decl := classDecl{
				line:       i + 1,
				name:       tracker.Qualify(ClassName(line)),
				namespaces: tracker.Stack(),
			}
			if IsDerivedClass(line) {
				decl.derived = true
				decl.base = BaseSpecifier(line)
			}
			decls = append(decls, decl)
		}
	}
	return decls, nil
}

func (b *ClassTableBuilder) registerClasses(ctx context.Context, path string, decls []classDecl, result *HeaderResult) error {
	for _, decl := range decls {
		rec := ClassRecord{
			ID:            b.seq.NextClassID(),
			QualifiedName: decl.name,
			SourceFile:    path,
		}
		if err := b.store.InsertClass(ctx, rec); err != nil {
			return fmt.Errorf("failed to register class %s: %w", rec.QualifiedName, err)
		}
		result.Classes = append(result.Classes, rec)
	}
	return nil
}

func (b *ClassTableBuilder) resolveBaseClasses(ctx context.Context, decls []classDecl, result *HeaderResult) error {
	for _, decl := range decls {
		if !decl.derived {
			continue
		}
		if decl.base == "" {
			result.Unresolved = append(result.Unresolved, decl.name+": <empty base>")
			continue
		}

		baseID, ok, err := b.resolver.ResolveReference(ctx, decl.base, decl.namespaces)
		if err != nil {
			return fmt.Errorf("failed to resolve base %s of %s: %w", decl.base, decl.name, err)
		}
		if !ok {
			result.Unresolved = append(result.Unresolved, decl.base)
			continue
		}
		if err := b.store.UpdateClassBaseclass(ctx, decl.name, baseID); err != nil {
			return fmt.Errorf("failed to link %s to base %d: %w", decl.name, baseID, err)
		}
		result.BaseLinks++
	}
	return nil
}

func hasClassDefinition(lines []string) bool {
	for _, line := range lines {
		if IsClassDefinition(line) {
			return true
		}
	}
	return false
}
