package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/slotscan/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over the extracted tables",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
query the extracted classes and slots.

The MCP server:
- Opens the project database read-only
- Provides slotscan_class (base chain, subclasses, slots and slot types)
- Provides slotscan_search (keyword search over classes and slots)
- Communicates via stdio (standard MCP transport)

Example:
  slotscan mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject("")
	if err != nil {
		return err
	}
	store, err := p.openStore(true)
	if err != nil {
		return err
	}
	defer store.DB().Close()

	// stdout carries the protocol.
	fmt.Fprintf(os.Stderr, "Slotscan MCP Server\n")
	fmt.Fprintf(os.Stderr, "Database: %s\n\n", p.databasePath())

	server, err := mcp.NewServer(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
