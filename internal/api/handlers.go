package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/solheim/lesa/internal/apperr"
	"github.com/solheim/lesa/internal/docservice"
	"github.com/solheim/lesa/internal/editor"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// docPath extracts the document path from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. topics%2Fdoc.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List documents
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListDocuments(r.Context())
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []DocumentListItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": items,
		"total":     len(items),
	})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get a single document by path
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /api/documents.
//
//	@Summary		Create a new document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	true	"Document to create"
//	@Success		201		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	doc, err := h.svc.CreateDocument(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "document already exists")
		case errors.Is(err, apperr.ErrUnsupportedFormat):
			writeError(w, http.StatusBadRequest, "unsupported document extension")
		default:
			slog.Error("create document failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/*.
//
//	@Summary		Update a document with optimistic concurrency
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string					true	"Document path"
//	@Param			If-Match	header	string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateDocumentRequest	true	"Updated content"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [put]
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := docPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var req UpdateDocumentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	doc, err := h.svc.UpdateDocument(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, apperr.ErrConflict):
			writeError(w, http.StatusConflict, "checksum mismatch")
		default:
			slog.Error("update document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/*.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			path	path	string	true	"Document path"
//	@Success		204		"Document deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := h.svc.DeleteDocument(r.Context(), path); err != nil {
		slog.Error("delete document failed", slog.String("path", path), slog.String("error", err.Error()))
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Render handles POST /api/render.
//
//	@Summary		Render Markdown content to display HTML
//	@Tags			render
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Content to render"
//	@Success		200		{object}	RenderResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res := h.svc.Render(r.Context(), req.Content)
	writeJSON(w, http.StatusOK, RenderResponse{
		HTML:     res.HTML,
		Headings: res.Headings,
		Fallback: res.Fallback,
	})
}

// Transform handles POST /api/transform.
//
//	@Summary		Apply an editor transform to content around a selection
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TransformRequest	true	"Transform to apply"
//	@Success		200		{object}	TransformResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/transform [post]
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t, ok := editor.Named(req.Action, editor.TransformOptions{
		Level: req.Level,
		Rows:  req.Rows,
		Cols:  req.Cols,
	})
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown action: "+req.Action)
		return
	}
	if req.SelectionStart < 0 || req.SelectionStart > len(req.Content) ||
		req.SelectionEnd < 0 || req.SelectionEnd > len(req.Content) {
		writeError(w, http.StatusBadRequest, "selection out of range")
		return
	}
	content, start, end := t(req.Content, req.SelectionStart, req.SelectionEnd)
	writeJSON(w, http.StatusOK, TransformResponse{
		Content:        content,
		SelectionStart: start,
		SelectionEnd:   end,
	})
}

// TOC handles GET /api/toc/*.
//
//	@Summary		Get the heading outline of a document
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	TOCResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/toc/{path} [get]
func (h *Handler) TOC(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	entries, err := h.svc.TOC(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("toc failed", slog.String("path", path), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Export handles GET and POST /api/export/{format}.
//
// GET exports a stored document named by the ?path= query parameter.
// POST exports the content carried in the request body, for unsaved
// editor buffers.
//
//	@Summary		Export a document to md, html, pdf, or docx
//	@Tags			export
//	@Produce		octet-stream
//	@Param			format	path		string			true	"Target format"	Enums(md, html, pdf, docx)
//	@Param			path	query		string			false	"Stored document path (GET)"
//	@Param			body	body		ExportRequest	false	"Unsaved content (POST)"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export/{format} [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	switch r.Method {
	case http.MethodGet:
		path := r.URL.Query().Get("path")
		if path == "" {
			writeError(w, http.StatusBadRequest, "query parameter 'path' is required")
			return
		}
		f, err := h.svc.Export(r.Context(), path, format)
		if err != nil {
			h.writeExportError(w, path, err)
			return
		}
		writeExportFile(w, f.Name, f.MIME, f.Data)

	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		f, err := h.svc.ExportContent(r.Context(), req.Name, req.Content, format)
		if err != nil {
			h.writeExportError(w, req.Name, err)
			return
		}
		writeExportFile(w, f.Name, f.MIME, f.Data)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) writeExportError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, "document is empty")
	case errors.Is(err, apperr.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "unsupported export format")
	default:
		slog.Error("export failed", slog.String("name", name), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeExportFile(w http.ResponseWriter, name, mime string, data []byte) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Get workspace settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	models.Settings
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Settings(r.Context())
	if err != nil {
		slog.Error("get settings failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// UpdateSettings handles PUT /api/settings.
//
//	@Summary		Update workspace settings
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	models.Settings
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	st, err := h.svc.Settings(r.Context())
	if err != nil {
		slog.Error("load settings failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.svc.SaveSettings(r.Context(), st); err != nil {
		slog.Error("save settings failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
