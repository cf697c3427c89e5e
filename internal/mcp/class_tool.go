package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/maypok86/otter"

	"github.com/mvp-joe/slotscan/internal/extract"
)

// ClassReader is the store capability the class tool reads from.
type ClassReader interface {
	GetClass(ctx context.Context, qualifiedName string) (*extract.ClassRecord, error)
	GetClassByID(ctx context.Context, id int64) (*extract.ClassRecord, error)
	SubclassesOf(ctx context.Context, classID int64) ([]extract.ClassRecord, error)
	SlotsForClass(ctx context.Context, classID int64) ([]extract.SlotRecord, error)
	TypesForSlot(ctx context.Context, slotID int64) ([]extract.ClassRecord, error)
}

// ClassRequest is the argument schema of the slotscan_class tool.
type ClassRequest struct {
	Name string `json:"name"`
}

// ClassInfo is a class as returned by the tools.
type ClassInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FormName string `json:"form_name,omitempty"`
	File     string `json:"file"`
}

// SlotInfo is a slot with the qualified names of the classes it accepts.
type SlotInfo struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

// ClassResponse is the result of the slotscan_class tool.
type ClassResponse struct {
	Class ClassInfo `json:"class"`
	// Bases is the inheritance chain, nearest base first.
	Bases   []ClassInfo `json:"bases"`
	Derived []ClassInfo `json:"derived"`
	Slots   []SlotInfo  `json:"slots"`
}

// DefaultClassCacheSize is the number of class descriptions kept in memory.
const DefaultClassCacheSize = 256

// ClassDescriber assembles class descriptions and caches them by name. The
// store must not change while a describer is in use.
type ClassDescriber struct {
	reader ClassReader
	cache  otter.Cache[string, *ClassResponse]
}

// NewClassDescriber creates a describer over reader. A size <= 0 selects
// DefaultClassCacheSize.
func NewClassDescriber(reader ClassReader, size int) (*ClassDescriber, error) {
	if size <= 0 {
		size = DefaultClassCacheSize
	}
	cache, err := otter.MustBuilder[string, *ClassResponse](size).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create class cache: %w", err)
	}
	return &ClassDescriber{reader: reader, cache: cache}, nil
}

// Describe returns the description of the lowest-id class named name, or nil
// when there is none. Misses are not cached.
func (d *ClassDescriber) Describe(ctx context.Context, name string) (*ClassResponse, error) {
	if response, ok := d.cache.Get(name); ok {
		return response, nil
	}

	class, err := d.reader.GetClass(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("class lookup failed: %w", err)
	}
	if class == nil {
		return nil, nil
	}

	response, err := describeClass(ctx, d.reader, class)
	if err != nil {
		return nil, err
	}
	d.cache.Set(name, response)
	return response, nil
}

// Close releases the cache.
func (d *ClassDescriber) Close() {
	d.cache.Close()
}

// AddClassTool registers the slotscan_class tool with an MCP server.
func AddClassTool(s *server.MCPServer, describer *ClassDescriber) {
	tool := mcp.NewTool(
		"slotscan_class",
		mcp.WithDescription(`Describe one extracted class by fully qualified name.

Returns the class (id, form name, declaring header), its base-class chain
nearest first, the classes directly derived from it, and its slots with the
class types each slot accepts.

Example: {"name": "Eaagles::Instruments::Gauge"}`),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Fully qualified class name, e.g. Eaagles::Basic::Number")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createClassHandler(describer))
}

func createClassHandler(describer *ClassDescriber) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ClassRequest
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}

		response, err := describer.Describe(ctx, args.Name)
		if err != nil {
			return nil, err
		}
		if response == nil {
			return mcp.NewToolResultError(fmt.Sprintf("class not found: %s", args.Name)), nil
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func describeClass(ctx context.Context, reader ClassReader, class *extract.ClassRecord) (*ClassResponse, error) {
	response := &ClassResponse{
		Class:   toClassInfo(*class),
		Bases:   []ClassInfo{},
		Derived: []ClassInfo{},
		Slots:   []SlotInfo{},
	}

	seen := map[int64]bool{class.ID: true}
	for base := class.BaseClassID; base != nil && !seen[*base]; {
		seen[*base] = true
		rec, err := reader.GetClassByID(ctx, *base)
		if err != nil {
			return nil, fmt.Errorf("base lookup failed: %w", err)
		}
		if rec == nil {
			break
		}
		response.Bases = append(response.Bases, toClassInfo(*rec))
		base = rec.BaseClassID
	}

	derived, err := reader.SubclassesOf(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("subclass lookup failed: %w", err)
	}
	for _, d := range derived {
		response.Derived = append(response.Derived, toClassInfo(d))
	}

	slots, err := reader.SlotsForClass(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("slot lookup failed: %w", err)
	}
	for _, slot := range slots {
		types, err := reader.TypesForSlot(ctx, slot.SlotID)
		if err != nil {
			return nil, fmt.Errorf("slot type lookup failed: %w", err)
		}
		info := SlotInfo{ID: slot.SlotID, Name: slot.SlotName, Types: make([]string, 0, len(types))}
		for _, t := range types {
			info.Types = append(info.Types, t.QualifiedName)
		}
		response.Slots = append(response.Slots, info)
	}
	return response, nil
}

func toClassInfo(c extract.ClassRecord) ClassInfo {
	info := ClassInfo{ID: c.ID, Name: c.QualifiedName, File: c.SourceFile}
	if c.FormName != nil {
		info.FormName = *c.FormName
	}
	return info
}
