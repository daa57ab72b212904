package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/solheim/lesa/internal/imagestore"
)

const maxUploadBytes = 50 << 20 // 50 MB

// ImageHandler accepts editor image uploads into the in-memory store and
// serves them back by token.
type ImageHandler struct {
	images *imagestore.Store
}

// NewImageHandler creates a handler over the given image store.
func NewImageHandler(images *imagestore.Store) *ImageHandler {
	return &ImageHandler{images: images}
}

// Upload handles POST /api/images (multipart/form-data, field "file").
//
//	@Summary		Upload an image for use in the editor
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image file"
//	@Success		201		{object}	ImageUploadResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/images [post]
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field in multipart form")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = imagestore.MIMEByExt[strings.ToLower(filepath.Ext(header.Filename))]
	}

	token, err := h.images.Put(data, mime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	writeJSON(w, http.StatusCreated, ImageUploadResponse{
		Token:    token,
		Markdown: h.images.Markdown(token, header.Filename),
		Size:     int64(len(data)),
	})
}

// Serve handles GET /api/images/{token}.
//
//	@Summary		Serve an uploaded image by token
//	@Tags			images
//	@Produce		image/*
//	@Param			token	path	string	true	"Image token"
//	@Success		200		{file}	binary
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/images/{token} [get]
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	entry, ok := h.images.Get(token)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", entry.MIME)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(entry.Data)
}
