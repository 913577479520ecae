// ABOUTME: MCP server implementation for vox
// ABOUTME: Exposes recording search and metadata to AI assistants
package mcp

import (
	"context"
	"database/sql"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/vox/internal/config"
	"github.com/harper/vox/internal/search"
)

// Server wraps the MCP server with vox-specific functionality.
type Server struct {
	mcpServer *mcp.Server
	database  *sql.DB
	cfg       *config.Config
	engine    *search.Engine
}

// NewServer creates a new vox MCP server over an open database.
func NewServer(database *sql.DB, cfg *config.Config) *Server {
	impl := &mcp.Implementation{
		Name:    "vox",
		Version: "0.1.0",
	}

	idx := search.NewIndex(database)
	server := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		database:  database,
		cfg:       cfg,
		engine:    search.NewEngine(idx, cfg.ItemsPerPage, cfg.MaxPerPage, cfg.ExcerptLength),
	}

	// Register components
	server.registerTools()
	server.registerResources()

	return server
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context) error {
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}
