package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hdtinh57/smartdocqa/internal/vectordb"
)

// parseSources turns the comma-separated sources argument into the slice
// form the pipeline expects. An absent argument means no restriction.
func parseSources(request mcp.CallToolRequest) []string {
	raw := request.GetString("sources", "")
	if raw == "" {
		return nil
	}
	var sources []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}

// handleAskDocuments answers a question grounded in the ingested corpus.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	answer, err := s.qa.Ask(ctx, question, parseSources(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	return mcp.NewToolResultText(answer), nil
}

// handleSearchDocuments performs semantic search over the document store.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	results, err := s.qa.Search(ctx, query, parseSources(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No results found. Ingest documents first with `smartdocqa ingest`."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleListDocuments lists the ingested documents.
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.qa.ListDocuments(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
	}

	if len(docs) == 0 {
		return mcp.NewToolResultText("No documents ingested yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d document(s):\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(&sb, "- %s (%d chunks, ingested %s)\n", d.Source, d.ChunkCount, d.IngestedAt.Format("2006-01-02 15:04"))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetDocumentText returns the stored extracted text of one document.
func (s *Server) handleGetDocumentText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}

	text, err := s.qa.DocumentOCR(source, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no extracted text for %q", source)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// formatSearchResults converts search results into a rich text format
// optimized for AI agent consumption.
func formatSearchResults(results []vectordb.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n", len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		fmt.Fprintf(&sb, "Source: %s (chunk %d)\n", r.Source, r.ChunkIndex)
		fmt.Fprintf(&sb, "Similarity: %.1f%%\n", r.Score*100)
		sb.WriteString("\n")
		sb.WriteString(r.Text)
		sb.WriteString("\n")
	}

	return sb.String()
}
