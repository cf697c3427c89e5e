// Package hierarchy builds the inheritance tree of the extracted classes.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/slotscan/internal/extract"
)

// ErrClassNotFound is returned when a named class is not in the graph.
var ErrClassNotFound = errors.New("class not found")

// ClassLister is the store capability the graph is built from.
type ClassLister interface {
	ListClasses(ctx context.Context) ([]extract.ClassRecord, error)
}

// Graph is the inheritance graph, with an edge from every base class to each
// class derived from it.
type Graph struct {
	g        graph.Graph[int64, extract.ClassRecord]
	children map[int64][]int64
	byName   map[string]int64
}

// Build loads every class and links it to its base.
func Build(ctx context.Context, lister ClassLister) (*Graph, error) {
	classes, err := lister.ListClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return FromClasses(classes)
}

// FromClasses builds a Graph from class records.
func FromClasses(classes []extract.ClassRecord) (*Graph, error) {
	h := &Graph{
		g:        graph.New(func(c extract.ClassRecord) int64 { return c.ID }, graph.Directed()),
		children: make(map[int64][]int64),
		byName:   make(map[string]int64),
	}

	for _, c := range classes {
		if err := h.g.AddVertex(c); err != nil {
			return nil, fmt.Errorf("failed to add class %s: %w", c.QualifiedName, err)
		}
		if id, ok := h.byName[c.QualifiedName]; !ok || c.ID < id {
			h.byName[c.QualifiedName] = c.ID
		}
	}

	for _, c := range classes {
		if c.BaseClassID == nil {
			continue
		}
		err := h.g.AddEdge(*c.BaseClassID, c.ID)
		if errors.Is(err, graph.ErrVertexNotFound) {
			continue
		}
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to link %s to its base: %w", c.QualifiedName, err)
		}
	}

	adjacency, err := h.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read adjacency: %w", err)
	}
	for base, derived := range adjacency {
		for id := range derived {
			h.children[base] = append(h.children[base], id)
		}
		sort.Slice(h.children[base], func(i, j int) bool { return h.children[base][i] < h.children[base][j] })
	}
	return h, nil
}

// Len returns the number of classes.
func (h *Graph) Len() int {
	n, _ := h.g.Order()
	return n
}

// Class returns the lowest-id class with the given qualified name.
func (h *Graph) Class(name string) (extract.ClassRecord, bool) {
	id, ok := h.byName[name]
	if !ok {
		return extract.ClassRecord{}, false
	}
	return h.ClassByID(id)
}

// ClassByID returns the class with the given id.
func (h *Graph) ClassByID(id int64) (extract.ClassRecord, bool) {
	c, err := h.g.Vertex(id)
	if err != nil {
		return extract.ClassRecord{}, false
	}
	return c, true
}

// Roots returns the classes without a resolved base, ordered by id.
func (h *Graph) Roots() []extract.ClassRecord {
	var roots []extract.ClassRecord
	for _, id := range h.sortedIDs() {
		c, _ := h.ClassByID(id)
		if c.BaseClassID == nil {
			roots = append(roots, c)
			continue
		}
		if _, ok := h.ClassByID(*c.BaseClassID); !ok {
			roots = append(roots, c)
		}
	}
	return roots
}

// Children returns the classes directly derived from id, ordered by id.
func (h *Graph) Children(id int64) []extract.ClassRecord {
	var out []extract.ClassRecord
	for _, child := range h.children[id] {
		c, _ := h.ClassByID(child)
		out = append(out, c)
	}
	return out
}

// Ancestors returns the base chain of id, nearest base first. The walk stops
// at the first class without a base or at a class already seen.
func (h *Graph) Ancestors(id int64) []extract.ClassRecord {
	var chain []extract.ClassRecord
	seen := map[int64]bool{id: true}

	c, ok := h.ClassByID(id)
	for ok && c.BaseClassID != nil && !seen[*c.BaseClassID] {
		seen[*c.BaseClassID] = true
		c, ok = h.ClassByID(*c.BaseClassID)
		if ok {
			chain = append(chain, c)
		}
	}
	return chain
}

// Render writes an indented tree. With an empty rootName every root is
// rendered; otherwise the subtree of that class.
func (h *Graph) Render(w io.Writer, rootName string) error {
	var roots []extract.ClassRecord
	if rootName == "" {
		roots = h.Roots()
	} else {
		c, ok := h.Class(rootName)
		if !ok {
			return fmt.Errorf("%s: %w", rootName, ErrClassNotFound)
		}
		roots = []extract.ClassRecord{c}
	}

	seen := make(map[int64]bool)
	for _, root := range roots {
		if err := h.render(w, root, 0, seen); err != nil {
			return err
		}
	}
	return nil
}

func (h *Graph) render(w io.Writer, c extract.ClassRecord, depth int, seen map[int64]bool) error {
	if seen[c.ID] {
		return nil
	}
	seen[c.ID] = true

	line := strings.Repeat("  ", depth) + c.QualifiedName
	if c.FormName != nil {
		line += fmt.Sprintf(" (%s)", *c.FormName)
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	for _, child := range h.Children(c.ID) {
		if err := h.render(w, child, depth+1, seen); err != nil {
			return err
		}
	}
	return nil
}

func (h *Graph) sortedIDs() []int64 {
	ids := make([]int64, 0, len(h.byName))
	adjacency, _ := h.g.AdjacencyMap()
	for id := range adjacency {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
