// Package docservice coordinates storage, index, rendering, and export
// operations behind a single service type used by the HTTP and MCP surfaces.
package docservice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/solheim/lesa/internal/apperr"
	"github.com/solheim/lesa/internal/checksum"
	"github.com/solheim/lesa/internal/export"
	"github.com/solheim/lesa/internal/imagestore"
	"github.com/solheim/lesa/internal/index"
	"github.com/solheim/lesa/internal/markdown"
	"github.com/solheim/lesa/internal/models"
	"github.com/solheim/lesa/internal/storage"
	"github.com/solheim/lesa/internal/toc"
)

const settingsRelPath = ".lesa/settings.yaml"

// DocumentDetail is the full representation of a document.
type DocumentDetail struct {
	Path      string           `json:"path"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Checksum  string           `json:"checksum"`
	Headings  []models.Heading `json:"headings"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store    storage.Provider
	db       *index.DB
	renderer *markdown.Renderer
	exporter *export.Manager
	images   *imagestore.Store
}

// NewService creates a new document service. The renderer passed in should
// be built with ImageResolver so that local: references resolve through
// this service (see Resolver).
func NewService(store storage.Provider, db *index.DB, renderer *markdown.Renderer, exporter *export.Manager, images *imagestore.Store) *Service {
	return &Service{
		store:    store,
		db:       db,
		renderer: renderer,
		exporter: exporter,
		images:   images,
	}
}

// Resolver returns an image resolver backed by the in-memory image store
// first and the workspace second. A local: reference is either an upload
// token or a workspace-relative file path.
func Resolver(store storage.Provider, images *imagestore.Store) markdown.ImageResolver {
	return func(ref string) (string, bool) {
		if uri, ok := images.Resolve(ref); ok {
			return uri, true
		}
		mime, ok := imagestore.MIMEByExt[strings.ToLower(filepath.Ext(ref))]
		if !ok {
			return "", false
		}
		data, err := store.Read(ref)
		if err != nil {
			return "", false
		}
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), true
	}
}

// GetDocument reads a document from storage and derives its outline.
func (s *Service) GetDocument(_ context.Context, path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(path, data), nil
}

// CreateDocument writes a new document and indexes it.
func (s *Service) CreateDocument(_ context.Context, path string, content []byte) (*DocumentDetail, error) {
	if !storage.IsDocument(path) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content), nil
}

// UpdateDocument writes updated content with optimistic concurrency.
func (s *Service) UpdateDocument(_ context.Context, path string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && !checksum.Match(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content), nil
}

// DeleteDocument removes a document from storage and index.
func (s *Service) DeleteDocument(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteDocument(path)
}

// ListDocuments returns all indexed documents ordered by path.
func (s *Service) ListDocuments(_ context.Context) ([]DocumentListItem, error) {
	rows, err := s.db.ListDocuments()
	if err != nil {
		return nil, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Render converts raw Markdown to display HTML.
func (s *Service) Render(_ context.Context, content string) markdown.Result {
	return s.renderer.Render(content)
}

// RenderDocument reads and renders a stored document.
func (s *Service) RenderDocument(ctx context.Context, path string) (markdown.Result, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return markdown.Result{}, apperr.ErrNotFound
		}
		return markdown.Result{}, err
	}
	return s.Render(ctx, string(data)), nil
}

// TOC returns the outline of a stored document.
func (s *Service) TOC(_ context.Context, path string) ([]toc.Entry, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return toc.Outline(markdown.SourceHeadings(string(data))), nil
}

// Export reads a stored document and serializes it to the requested format
// using the current workspace settings.
func (s *Service) Export(ctx context.Context, path, format string) (export.File, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return export.File{}, apperr.ErrNotFound
		}
		return export.File{}, err
	}
	st, err := s.Settings(ctx)
	if err != nil {
		st = models.DefaultSettings()
	}
	return s.exporter.Export(ctx, filepath.Base(path), string(data), format, st)
}

// ExportContent serializes unsaved content, for editor-side export.
func (s *Service) ExportContent(ctx context.Context, name, content, format string) (export.File, error) {
	st, err := s.Settings(ctx)
	if err != nil {
		st = models.DefaultSettings()
	}
	return s.exporter.Export(ctx, name, content, format, st)
}

// Settings loads workspace settings, falling back to defaults when the
// settings file does not exist yet.
func (s *Service) Settings(_ context.Context) (models.Settings, error) {
	data, err := os.ReadFile(filepath.Join(s.store.Root(), settingsRelPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.DefaultSettings(), nil
		}
		return models.Settings{}, err
	}
	st := models.DefaultSettings()
	if err := yaml.Unmarshal(data, &st); err != nil {
		return models.Settings{}, fmt.Errorf("docservice: parse settings: %w", err)
	}
	return st, nil
}

// SaveSettings persists workspace settings under the hidden settings dir.
func (s *Service) SaveSettings(_ context.Context, st models.Settings) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("docservice: marshal settings: %w", err)
	}
	full := filepath.Join(s.store.Root(), settingsRelPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// Images exposes the in-memory image store for upload handlers.
func (s *Service) Images() *imagestore.Store { return s.images }

// IndexFile upserts a document into the index with its derived title and
// outline. Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	body := string(data)
	return s.db.UpsertDocument(index.DocumentRow{
		Path:      path,
		Title:     markdown.DocumentTitle(path, body),
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}, body, markdown.SourceHeadings(body))
}

func (s *Service) buildDetail(path string, data []byte) *DocumentDetail {
	body := string(data)
	return &DocumentDetail{
		Path:      path,
		Title:     markdown.DocumentTitle(path, body),
		Content:   body,
		Checksum:  checksum.Sum(data),
		Headings:  nonNilSlice(markdown.SourceHeadings(body)),
		UpdatedAt: time.Now().UTC(),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
