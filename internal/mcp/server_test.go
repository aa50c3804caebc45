package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hdtinh57/smartdocqa/internal/registry"
	"github.com/hdtinh57/smartdocqa/internal/vectordb"
)

// mockPipeline implements Pipeline for testing.
type mockPipeline struct {
	answer        string
	askErr        error
	searchResults []vectordb.SearchResult
	docs          []registry.Document
	ocrText       string
	lastSources   []string
}

func (m *mockPipeline) Ask(_ context.Context, query string, allowedSources []string) (string, error) {
	m.lastSources = allowedSources
	return m.answer, m.askErr
}

func (m *mockPipeline) Search(_ context.Context, query string, allowedSources []string) ([]vectordb.SearchResult, error) {
	m.lastSources = allowedSources
	return m.searchResults, nil
}

func (m *mockPipeline) ListDocuments(_ context.Context) ([]registry.Document, error) {
	return m.docs, nil
}

func (m *mockPipeline) DocumentOCR(source string, asHTML bool) (string, error) {
	if m.ocrText == "" {
		return "", errors.New("not found")
	}
	return m.ocrText, nil
}

// textContent gets the text content from a CallToolResult.
func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("no text content in %v", result.Content)
	return ""
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"ask_documents", askDocumentsTool, "ask_documents"},
		{"search_documents", searchDocumentsTool, "search_documents"},
		{"list_documents", listDocumentsTool, "list_documents"},
		{"get_document_text", getDocumentTextTool, "get_document_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	qa := &mockPipeline{}
	srv := NewServer(qa)

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.qa != qa {
		t.Error("pipeline not set correctly")
	}
}

func TestHandleAskDocuments(t *testing.T) {
	qa := &mockPipeline{answer: "The total is 42."}
	srv := NewServer(qa)
	ctx := context.Background()

	t.Run("basic question", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"question": "what is the total?"}

		result, err := srv.handleAskDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if got := textContent(t, result); got != "The total is 42." {
			t.Errorf("answer = %q", got)
		}
		if qa.lastSources != nil {
			t.Errorf("expected nil sources, got %v", qa.lastSources)
		}
	})

	t.Run("scoped to sources", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"question": "what is the total?",
			"sources":  "invoice.png, receipt.pdf",
		}

		if _, err := srv.handleAskDocuments(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(qa.lastSources) != 2 || qa.lastSources[0] != "invoice.png" || qa.lastSources[1] != "receipt.pdf" {
			t.Errorf("sources = %v", qa.lastSources)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleAskDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing question")
		}
	})

	t.Run("pipeline failure", func(t *testing.T) {
		failing := NewServer(&mockPipeline{askErr: errors.New("store down")})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"question": "anything"}

		result, err := failing.handleAskDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error when the pipeline fails")
		}
	})
}

func TestHandleSearchDocuments(t *testing.T) {
	qa := &mockPipeline{searchResults: []vectordb.SearchResult{
		{Score: 0.91, Text: "The invoice total is 42 euros.", Source: "invoice.png", ChunkIndex: 0},
	}}
	srv := NewServer(qa)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"query": "total"}

	result, err := srv.handleSearchDocuments(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	text := textContent(t, result)
	for _, want := range []string{"Found 1 result(s)", "invoice.png", "91.0%", "42 euros"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in output:\n%s", want, text)
		}
	}
}

func TestHandleSearchDocumentsEmpty(t *testing.T) {
	srv := NewServer(&mockPipeline{})
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"query": "anything"}

	result, err := srv.handleSearchDocuments(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(textContent(t, result), "No results found") {
		t.Error("expected the no-results message")
	}
}

func TestHandleListDocuments(t *testing.T) {
	qa := &mockPipeline{docs: []registry.Document{
		{Source: "invoice.png", ChunkCount: 3, IngestedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)},
	}}
	srv := NewServer(qa)

	result, err := srv.handleListDocuments(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := textContent(t, result)
	if !strings.Contains(text, "invoice.png") || !strings.Contains(text, "3 chunks") {
		t.Errorf("unexpected listing:\n%s", text)
	}
}

func TestHandleGetDocumentText(t *testing.T) {
	srv := NewServer(&mockPipeline{ocrText: "# Invoice\n\nTotal: 42"})

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"source": "invoice.png"}

	result, err := srv.handleGetDocumentText(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if got := textContent(t, result); got != "# Invoice\n\nTotal: 42" {
		t.Errorf("text = %q", got)
	}

	missing := NewServer(&mockPipeline{})
	result, err = missing.handleGetDocumentText(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown source")
	}
}
