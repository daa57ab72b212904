package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/solheim/lesa/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	ih := NewImageHandler(svc.Images())

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents CRUD.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	// Rendering and outlines.
	r.Post("/render", h.Render)
	r.Post("/transform", h.Transform)
	r.Get("/toc/*", h.TOC)

	// Export.
	r.Get("/export/{format}", h.Export)
	r.Post("/export/{format}", h.Export)

	// Search.
	r.Get("/search", h.Search)

	// Settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	// Editor image uploads.
	r.Post("/images", ih.Upload)
	r.Get("/images/{token}", ih.Serve)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
