package api

import (
	"github.com/solheim/lesa/internal/docservice"
	"github.com/solheim/lesa/internal/models"
	"github.com/solheim/lesa/internal/toc"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// RenderRequest is the request body for ad-hoc rendering.
type RenderRequest struct {
	Content string `json:"content" example:"# Hello" validate:"required"`
}

// RenderResponse carries rendered HTML and the derived outline.
type RenderResponse struct {
	HTML     string           `json:"html" validate:"required"`
	Headings []models.Heading `json:"headings"`
	Fallback bool             `json:"fallback"`
}

// TransformRequest is the request body for applying an editor transform
// to content around a selection.
type TransformRequest struct {
	Action         string `json:"action" example:"bold" validate:"required"`
	Content        string `json:"content"`
	SelectionStart int    `json:"selectionStart"`
	SelectionEnd   int    `json:"selectionEnd"`
	Level          int    `json:"level,omitempty"`
	Rows           int    `json:"rows,omitempty"`
	Cols           int    `json:"cols,omitempty"`
}

// TransformResponse carries the transformed content and updated selection.
type TransformResponse struct {
	Content        string `json:"content"`
	SelectionStart int    `json:"selectionStart"`
	SelectionEnd   int    `json:"selectionEnd"`
}

// ExportRequest is the request body for exporting unsaved editor content.
type ExportRequest struct {
	Name    string `json:"name" example:"notes.md"`
	Content string `json:"content" example:"# Hello" validate:"required"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = docservice.DocumentListItem

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"42" validate:"required"`
}

// TOCResponse wraps a document outline.
type TOCResponse struct {
	Entries []toc.Entry `json:"entries" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Title   string `json:"title" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// ImageUploadResponse is returned after a successful image upload.
type ImageUploadResponse struct {
	Token    string `json:"token" example:"img_6b9f..." validate:"required"`
	Markdown string `json:"markdown" example:"![image.png](local:img_6b9f...)" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
}
