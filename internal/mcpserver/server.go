// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Lesa tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/solheim/lesa/internal/docservice"
)

// Server wraps the MCP server with Lesa tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Lesa tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lesa",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all Markdown documents in the workspace."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full Markdown source of a document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. folder/doc.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new Markdown document at the specified path. "+
			"Content should follow the supported Markdown dialect; read it first via "+
			"the get_document_contract tool or the lesa://document-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new document (must end with .md, .markdown, or .txt)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("render_document",
		mcp.WithDescription("Render a stored document to display HTML, including math, "+
			"alerts, and syntax-highlighted code."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
	), s.renderDocument)

	s.mcp.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Export a stored document to md, html, pdf, or docx. "+
			"Binary formats are returned base64-encoded."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
		mcp.WithString("format", mcp.Required(), mcp.Description("Target format: md, html, pdf, or docx")),
	), s.exportDocument)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the supported Markdown dialect reference. "+
			"Call this before creating documents to ensure correct structure."),
	), s.getDocumentContract)

	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Ingest an image (data URI or http/https URL) into the "+
			"editor image store. Returns a markdownImage snippet referencing the minted token."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data: URI or http(s) URL of the image")),
		mcp.WithString("filename", mcp.Description("Optional filename used for alt text and type detection")),
	), s.uploadImage)

	// Resource: document format reference.
	s.mcp.AddResource(
		mcp.NewResource("lesa://document-format", "Document Format Reference",
			mcp.WithResourceDescription("The Markdown dialect Lesa renders and exports."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListDocuments(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var lines []string
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s\t%s", it.Path, it.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no documents"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateDocument(ctx, path, []byte(content)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) renderDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.RenderDocument(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(res.HTML), nil
}

type exportResult struct {
	Name   string `json:"name"`
	MIME   string `json:"mime"`
	Base64 string `json:"base64,omitempty"`
	Text   string `json:"text,omitempty"`
}

func (s *Server) exportDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := s.svc.Export(ctx, path, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := exportResult{Name: f.Name, MIME: f.MIME}
	if strings.HasPrefix(f.MIME, "text/") {
		res.Text = string(f.Data)
	} else {
		res.Base64 = base64.StdEncoding.EncodeToString(f.Data)
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "lesa://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
