// Package mcpserver exposes the analyses as Model Context Protocol tools
// over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/parkrevil/firebat-sub000/internal/service/analysis"
)

// Server wraps the MCP server and registers all firebat tools.
type Server struct {
	server *mcp.Server
	svc    *analysis.Service
}

// NewServer creates a new MCP server with all firebat tools registered. A
// nil service uses the configuration found in the working directory.
func NewServer(version string, svc *analysis.Service) *Server {
	if version == "" {
		version = "dev"
	}
	if svc == nil {
		svc = analysis.New()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "firebat",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, svc: svc}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the analysis tools to the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_dependencies",
		Description: describeDependencies(),
	}, s.handleAnalyzeDependencies)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_coupling",
		Description: describeCoupling(),
	}, s.handleAnalyzeCoupling)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_duplicates",
		Description: describeDuplicates(),
	}, s.handleAnalyzeDuplicates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_report",
		Description: describeReport(),
	}, s.handleAnalyzeReport)
}
