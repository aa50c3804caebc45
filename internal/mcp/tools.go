package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askDocumentsTool defines the ask_documents MCP tool.
var askDocumentsTool = mcp.NewTool("ask_documents",
	mcp.WithDescription("Ask a question about the ingested documents. Returns an answer grounded in the retrieved document excerpts."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Natural language question"),
	),
	mcp.WithString("sources",
		mcp.Description("Comma-separated list of source names to restrict the answer to"),
	),
)

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Search the ingested documents semantically. Returns the matching chunks with their similarity scores."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithString("sources",
		mcp.Description("Comma-separated list of source names to restrict the search to"),
	),
)

// listDocumentsTool defines the list_documents MCP tool.
var listDocumentsTool = mcp.NewTool("list_documents",
	mcp.WithDescription("List the ingested documents with their chunk counts."),
)

// getDocumentTextTool defines the get_document_text MCP tool.
var getDocumentTextTool = mcp.NewTool("get_document_text",
	mcp.WithDescription("Get the full extracted text of one ingested document."),
	mcp.WithString("source",
		mcp.Required(),
		mcp.Description("Source name of the document"),
	),
)
