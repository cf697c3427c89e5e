// Package mcp exposes the extracted class tables to coding assistants over
// the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/slotscan/internal/search"
	"github.com/mvp-joe/slotscan/internal/storage"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server manages the MCP server lifecycle.
type Server struct {
	index     *search.Index
	describer *ClassDescriber
	mcp       *server.MCPServer
}

// NewServer builds the search index from store and registers the tools.
// The store must stay open for the lifetime of the server.
func NewServer(ctx context.Context, store *storage.Store) (*Server, error) {
	index, err := search.Build(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}

	describer, err := NewClassDescriber(store, DefaultClassCacheSize)
	if err != nil {
		index.Close()
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		"slotscan-mcp",
		Version,
		server.WithToolCapabilities(true),
	)
	AddClassTool(mcpServer, describer)
	AddSearchTool(mcpServer, index)

	return &Server{index: index, describer: describer, mcp: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the search index and the class cache.
func (s *Server) Close() error {
	if s.describer != nil {
		s.describer.Close()
	}
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
