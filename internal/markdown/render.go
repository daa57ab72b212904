// Package markdown turns Markdown source into display HTML. The pipeline
// protects fragile segments (base64 images, math) behind placeholders,
// runs the parser, rewrites the resulting tree (heading anchors, link
// targets, image figures, alert blocks, code copy controls), then
// restores the protected segments. Render never fails outward: any error degrades to escaped
// plain text.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/solheim/lesa/internal/frontmatter"
	"github.com/solheim/lesa/internal/models"
)

// ImageResolver maps a local image token to a data URI. The second return
// is false when the token is unknown.
type ImageResolver func(token string) (string, bool)

// Result is the outcome of a render.
type Result struct {
	HTML     string           `json:"html"`
	Headings []models.Heading `json:"headings,omitempty"`
	// Fallback is true when rendering failed and HTML holds the escaped
	// raw source instead of parsed output.
	Fallback bool `json:"fallback,omitempty"`
}

// Renderer is the configured render pipeline. Safe for concurrent use.
type Renderer struct {
	md       goldmark.Markdown
	ts       Typesetter
	resolver ImageResolver
	labels   AlertLabels
	logger   *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTypesetter replaces the default KaTeX markup typesetter.
func WithTypesetter(ts Typesetter) RendererOption {
	return func(r *Renderer) { r.ts = ts }
}

// WithImageResolver installs the resolver for local: image tokens.
func WithImageResolver(res ImageResolver) RendererOption {
	return func(r *Renderer) { r.resolver = res }
}

// WithAlertLabels overrides the alert title set.
func WithAlertLabels(labels AlertLabels) RendererOption {
	return func(r *Renderer) { r.labels = labels }
}

// WithLogger sets the logger used for non-fatal render diagnostics.
func WithLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) { r.logger = logger }
}

// NewRenderer builds the pipeline: GFM tables, strikethrough, task lists
// and autolinks, chroma-highlighted code blocks, raw HTML passthrough,
// hard line breaks.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
					highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
				),
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithHardWraps(),
				goldmarkhtml.WithXHTML(),
				goldmarkhtml.WithUnsafe(),
			),
		),
		ts:     KatexMarkup{},
		labels: EnglishAlertLabels(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts Markdown source to HTML. It does not return an error:
// on any failure the result carries escaped raw source and Fallback set.
func (r *Renderer) Render(src string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = r.fallback(src, fmt.Errorf("renderer panic: %v", p))
		}
	}()

	protected, st := Protect(src)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(protected), &buf); err != nil {
		return r.fallback(src, err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return r.fallback(src, err)
	}

	headings := assignHeadingIDs(doc)
	rewriteLinks(doc)
	r.rewriteImages(doc)
	transformAlerts(doc, r.labels)
	wrapCodeBlocks(doc)

	out, err := doc.Find("body").Html()
	if err != nil {
		return r.fallback(src, err)
	}
	out = st.Restore(out, r.ts, r.logger)

	return Result{HTML: out, Headings: headings}
}

func (r *Renderer) fallback(src string, err error) Result {
	r.logger.Error("render failed, falling back to plain text", slog.String("error", err.Error()))
	return Result{
		HTML:     "<pre>" + html.EscapeString(src) + "</pre>",
		Fallback: true,
	}
}

// assignHeadingIDs gives every heading a slug-derived id, suffixing
// duplicates with -1, -2, ..., and returns the ordered outline.
func assignHeadingIDs(doc *goquery.Document) []models.Heading {
	var headings []models.Heading
	seen := make(map[string]int)
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		level := int(tag[1] - '0')
		text := strings.TrimSpace(s.Text())
		id := Slug(text)
		if n, dup := seen[id]; dup {
			seen[id] = n + 1
			id = fmt.Sprintf("%s-%d", id, n)
		} else {
			seen[id] = 1
		}
		s.SetAttr("id", id)
		headings = append(headings, models.Heading{Level: level, Text: text, ID: id})
	})
	return headings
}

// rewriteLinks opens absolute links in a new tab.
func rewriteLinks(doc *goquery.Document) {
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			s.SetAttr("target", "_blank")
			s.SetAttr("rel", "noopener")
		}
	})
}

// rewriteImages resolves local: tokens through the resolver, then wraps
// every image in a lazy-loading figure with the alt text as caption. An
// image that was the sole content of its paragraph replaces the
// paragraph, since figure is not valid inside p. Unresolvable tokens
// keep their src so the break is visible rather than silent.
func (r *Renderer) rewriteImages(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && strings.HasPrefix(src, "local:") {
			token := strings.TrimPrefix(src, "local:")
			if r.resolver != nil {
				if uri, found := r.resolver(token); found {
					s.SetAttr("src", uri)
				} else {
					r.logger.Warn("unresolved local image token", slog.String("token", token))
				}
			}
		}
		s.AddClass("markdown-image")
		s.SetAttr("loading", "lazy")

		parent := s.Parent()
		soleInParagraph := goquery.NodeName(parent) == "p" &&
			parent.Children().Length() == 1 && strings.TrimSpace(parent.Text()) == ""

		s.WrapHtml(`<figure class="markdown-figure"></figure>`)
		if alt, _ := s.Attr("alt"); alt != "" {
			s.AfterHtml("<figcaption>" + html.EscapeString(alt) + "</figcaption>")
		}
		if soleInParagraph {
			parent.ReplaceWithSelection(s.Parent())
		}
	})
}

// wrapCodeBlocks puts a copy control before every fenced code block. The
// data-code attribute carries the escaped source text so a client can
// copy it without unpicking the highlight markup.
func wrapCodeBlocks(doc *goquery.Document) {
	doc.Find("pre").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(".code-block-wrapper").Length() > 0 {
			return
		}
		source := s.Text()
		if code := s.Find("code").First(); code.Length() > 0 {
			source = code.Text()
		}
		s.WrapHtml(`<div class="code-block-wrapper"></div>`)
		s.BeforeHtml(`<button class="code-copy-btn" type="button" data-code="` +
			html.EscapeString(source) + `">Copy</button>`)
	})
}

// FirstHeadingTitle returns the text of the first H1 in src, or "".
func FirstHeadingTitle(src string) string {
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// DocumentTitle derives a display title for a document: the frontmatter
// "title" field wins, then the first H1, then the file name without its
// extension.
func DocumentTitle(path, body string) string {
	if fm, rest := frontmatter.Split([]byte(body)); fm != nil {
		if t := frontmatter.Title(fm); t != "" {
			return t
		}
		body = rest
	}
	if t := FirstHeadingTitle(body); t != "" {
		return t
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
