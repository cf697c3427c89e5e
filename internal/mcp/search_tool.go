package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/slotscan/internal/search"
)

// Searcher runs keyword queries over classes and slots.
type Searcher interface {
	Search(ctx context.Context, query string, opts *search.Options) ([]search.Hit, error)
}

// SearchRequest is the argument schema of the slotscan_search tool.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// SearchResponse is the result of the slotscan_search tool.
type SearchResponse struct {
	Query   string       `json:"query"`
	Results []search.Hit `json:"results"`
	Total   int          `json:"total"`
	TookMs  int          `json:"took_ms"`
}

// AddSearchTool registers the slotscan_search tool with an MCP server.
func AddSearchTool(s *server.MCPServer, searcher Searcher) {
	tool := mcp.NewTool(
		"slotscan_search",
		mcp.WithDescription(`Keyword search over extracted classes and slots using bleve query syntax.

Fields: name, owner (class owning a slot), form_name, file, kind (class or slot).

Examples:
- gauge - anything mentioning gauge
- name:Number - classes or slots named Number
- owner:Gauge +kind:slot - slots of Gauge classes
- form_name:dial - classes registered under a form name`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithString("kind",
			mcp.Description("Restrict results to one document kind"),
			mcp.Enum(search.KindClass, search.KindSlot)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchHandler(searcher))
}

func createSearchHandler(searcher Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		var args SearchRequest
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		if args.Kind != "" && args.Kind != search.KindClass && args.Kind != search.KindSlot {
			return mcp.NewToolResultError(fmt.Sprintf("kind must be %q or %q", search.KindClass, search.KindSlot)), nil
		}

		hits, err := searcher.Search(ctx, args.Query, &search.Options{Limit: args.Limit, Kind: args.Kind})
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		response := &SearchResponse{
			Query:   args.Query,
			Results: hits,
			Total:   len(hits),
			TookMs:  int(time.Since(startTime).Milliseconds()),
		}
		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
