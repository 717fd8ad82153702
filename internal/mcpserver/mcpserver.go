// Package mcpserver exposes wraith's analysis as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"io"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the wraith tools.
type Server struct {
	server *mcp.Server
	logger *slog.Logger
}

// NewServer creates a new MCP server with every wraith tool registered.
func NewServer(version string, logger *slog.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "wraith",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, logger: logger}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Tool names, in registration order.
const (
	toolFindDeadCode  = "find_dead_code"
	toolListPlugins   = "list_plugins"
	toolSorbetMetrics = "sorbet_metrics"
)

var toolNames = []string{toolFindDeadCode, toolListPlugins, toolSorbetMetrics}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolFindDeadCode,
		Description: describeFindDeadCode(),
	}, s.handleFindDeadCode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolListPlugins,
		Description: describeListPlugins(),
	}, s.handleListPlugins)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolSorbetMetrics,
		Description: describeSorbetMetrics(),
	}, s.handleSorbetMetrics)
}
