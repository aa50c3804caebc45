// Package mcp exposes the document QA pipeline as MCP tools over stdio, so
// AI agents can search and question the ingested corpus.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hdtinh57/smartdocqa/internal/registry"
	"github.com/hdtinh57/smartdocqa/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Pipeline is the slice of the QA pipeline the MCP tools need.
type Pipeline interface {
	Ask(ctx context.Context, query string, allowedSources []string) (string, error)
	Search(ctx context.Context, query string, allowedSources []string) ([]vectordb.SearchResult, error)
	ListDocuments(ctx context.Context) ([]registry.Document, error)
	DocumentOCR(source string, asHTML bool) (string, error)
}

// Server wraps an MCP server that exposes document QA tools.
type Server struct {
	qa  Pipeline
	mcp *server.MCPServer
}

// NewServer creates a new MCP server around an already wired pipeline.
func NewServer(qa Pipeline) *Server {
	s := &Server{qa: qa}

	s.mcp = server.NewMCPServer(
		"smartdocqa",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askDocumentsTool, s.handleAskDocuments)
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
	s.mcp.AddTool(getDocumentTextTool, s.handleGetDocumentText)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
