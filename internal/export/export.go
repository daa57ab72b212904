// Package export serializes documents to downloadable files: raw
// Markdown, standalone HTML, PDF, and DOCX. PDF and DOCX degrade to a
// print-oriented HTML file when their serializer fails; the fallback is
// labeled with its real type.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/solheim/lesa/internal/apperr"
	"github.com/solheim/lesa/internal/markdown"
	"github.com/solheim/lesa/internal/models"
)

// Heading and code font-size ratios relative to the body size.
const (
	RatioH1   = 2.0
	RatioH2   = 1.45
	RatioH3   = 1.18
	RatioCode = 0.82
)

// PtToPx converts a point size to CSS pixels.
func PtToPx(pt float64) float64 { return pt * 1.333 }

// File is a serialized export result.
type File struct {
	Name string
	MIME string
	Data []byte
	// Fallback names the format that failed when Data holds the HTML
	// stand-in, e.g. "pdf". Empty on a clean export.
	Fallback string
}

// Manager drives exports. Safe for concurrent use.
type Manager struct {
	renderer *markdown.Renderer
	logger   *slog.Logger
}

// NewManager builds a Manager rendering HTML through renderer.
func NewManager(renderer *markdown.Renderer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{renderer: renderer, logger: logger}
}

// Formats lists the supported export formats.
func Formats() []string { return []string{"md", "html", "pdf", "docx"} }

// Export serializes content under the given base name. Whitespace-only
// content is rejected before any serialization work.
func (m *Manager) Export(ctx context.Context, name, content, format string, st models.Settings) (File, error) {
	if strings.TrimSpace(content) == "" {
		return File{}, apperr.ErrEmptyDocument
	}
	content = Cleanup(content)
	base := baseName(name)
	size := float64(st.Appearance.ExportFontSize)
	if size <= 0 {
		size = float64(models.DefaultSettings().Appearance.ExportFontSize)
	}

	switch strings.ToLower(format) {
	case "md", "markdown":
		return File{Name: base + ".md", MIME: "text/markdown; charset=utf-8", Data: []byte(content)}, nil

	case "html":
		res := m.renderer.Render(content)
		doc := buildHTMLDocument(base, res.HTML, size)
		return File{Name: base + ".html", MIME: "text/html; charset=utf-8", Data: []byte(doc)}, nil

	case "pdf":
		data, err := buildPDF(ctx, content, size)
		if err != nil {
			m.logger.Warn("pdf export failed, falling back to html",
				slog.String("name", base), slog.String("error", err.Error()))
			return m.htmlFallback(base, content, size, "pdf"), nil
		}
		return File{Name: base + ".pdf", MIME: "application/pdf", Data: data}, nil

	case "docx":
		data, err := buildDocx(ParseElements(content), size)
		if err != nil {
			m.logger.Warn("docx export failed, falling back to html",
				slog.String("name", base), slog.String("error", err.Error()))
			return m.htmlFallback(base, content, size, "docx"), nil
		}
		return File{
			Name: base + ".docx",
			MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data: data,
		}, nil
	}

	return File{}, fmt.Errorf("export: %q: %w", format, apperr.ErrUnsupportedFormat)
}

// htmlFallback is the degraded result for a failed binary serializer.
// It is a real HTML file and says so in Name and MIME; Fallback records
// what the caller originally asked for.
func (m *Manager) htmlFallback(base, content string, size float64, wanted string) File {
	res := m.renderer.Render(content)
	doc := buildHTMLDocument(base, res.HTML, size)
	return File{
		Name:     base + ".html",
		MIME:     "text/html; charset=utf-8",
		Data:     []byte(doc),
		Fallback: wanted,
	}
}

var zeroWidthReplacer = strings.NewReplacer(
	"​", "",
	"‌", "",
	"‍", "",
	"\uFEFF", "",
)

// Cleanup normalizes newlines and strips zero-width characters that
// break downstream serializers.
func Cleanup(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return zeroWidthReplacer.Replace(content)
}

func baseName(name string) string {
	name = strings.TrimSpace(name)
	for _, ext := range []string{".md", ".markdown", ".txt"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	if name == "" {
		name = "document"
	}
	return name
}
