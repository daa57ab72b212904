package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/solheim/lesa/internal/apperr"
	"github.com/solheim/lesa/internal/markdown"
	"github.com/solheim/lesa/internal/models"
)

func testManager() *Manager {
	return NewManager(markdown.NewRenderer(), nil)
}

func TestExport_EmptyDocumentRejected(t *testing.T) {
	m := testManager()
	for _, content := range []string{"", "   \n\t\n  "} {
		if _, err := m.Export(context.Background(), "a.md", content, "md", models.DefaultSettings()); !errors.Is(err, apperr.ErrEmptyDocument) {
			t.Errorf("content %q: err = %v, want ErrEmptyDocument", content, err)
		}
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	m := testManager()
	if _, err := m.Export(context.Background(), "a.md", "text", "rtf", models.DefaultSettings()); !errors.Is(err, apperr.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExport_Markdown(t *testing.T) {
	m := testManager()
	f, err := m.Export(context.Background(), "notes.md", "# Hi\r\ntext​", "md", models.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "notes.md" {
		t.Errorf("name = %q", f.Name)
	}
	if string(f.Data) != "# Hi\ntext" {
		t.Errorf("data = %q, want cleaned content", f.Data)
	}
	if f.Fallback != "" {
		t.Errorf("fallback = %q, want empty", f.Fallback)
	}
}

func TestExport_HTMLSizes(t *testing.T) {
	m := testManager()
	st := models.DefaultSettings() // export size 11pt
	f, err := m.Export(context.Background(), "doc", "# Title\n\nbody", "html", st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := string(f.Data)
	// 11pt * 1.333 = 14.7px body, h1 at 2.0x = 29.3px
	if !strings.Contains(page, "font-size: 14.7px") {
		t.Errorf("body size missing: %s", page[:300])
	}
	if !strings.Contains(page, "font-size: 29.3px") {
		t.Errorf("h1 size missing")
	}
	if !strings.Contains(page, "<h1 id=\"title\">") {
		t.Errorf("rendered body missing")
	}
	if !strings.HasPrefix(f.MIME, "text/html") {
		t.Errorf("mime = %q", f.MIME)
	}
}

func TestExport_HTMLStripsCopyControls(t *testing.T) {
	m := testManager()
	f, err := m.Export(context.Background(), "doc", "```go\npackage main\n```\n", "html", models.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := string(f.Data)
	if strings.Contains(page, "code-copy-btn") {
		t.Errorf("copy control must not survive export: %s", page)
	}
	if strings.Contains(page, "code-block-wrapper") {
		t.Errorf("wrapper must be unwrapped on export: %s", page)
	}
	if !strings.Contains(page, "<pre") || !strings.Contains(page, "package main") {
		t.Errorf("code block lost: %s", page)
	}
}

func TestExport_PDF(t *testing.T) {
	m := testManager()
	f, err := m.Export(context.Background(), "doc.md", "# Title\n\nSome text.\n\n- a\n- b\n", "pdf", models.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Fallback != "" {
		t.Fatalf("unexpected fallback to %q html", f.Fallback)
	}
	if f.Name != "doc.pdf" || f.MIME != "application/pdf" {
		t.Errorf("name = %q mime = %q", f.Name, f.MIME)
	}
	if !bytes.HasPrefix(f.Data, []byte("%PDF")) {
		t.Errorf("data does not look like a pdf: %q", f.Data[:8])
	}
}

func TestExport_Docx(t *testing.T) {
	m := testManager()
	f, err := m.Export(context.Background(), "doc.md", "# Head\n\npara **bold**\n\n- item\n", "docx", models.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Fallback != "" {
		t.Fatalf("unexpected fallback to %q html", f.Fallback)
	}
	zr, err := zip.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		t.Fatalf("not a zip: %v", err)
	}
	parts := make(map[string]string)
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			t.Fatalf("open %s: %v", zf.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		parts[zf.Name] = string(data)
	}
	doc, ok := parts["word/document.xml"]
	if !ok {
		t.Fatal("document.xml missing")
	}
	if !strings.Contains(doc, `w:val="Heading1"`) || !strings.Contains(doc, "Head") {
		t.Errorf("heading missing: %s", doc)
	}
	if !strings.Contains(doc, "para bold") {
		t.Errorf("inline markup must be stripped to text: %s", doc)
	}
	// 11pt body = 22 half-points, H1 at 2.0x = 44.
	styles := parts["word/styles.xml"]
	if !strings.Contains(styles, `w:val="22"`) || !strings.Contains(styles, `w:val="44"`) {
		t.Errorf("half-point sizes wrong")
	}
	if _, ok := parts["[Content_Types].xml"]; !ok {
		t.Error("content types missing")
	}
}

func TestCleanup(t *testing.T) {
	in := "a\r\nb\rc​‍\uFEFFd"
	if got := Cleanup(in); got != "a\nb\ncd" {
		t.Errorf("got %q", got)
	}
}

func TestBaseName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"notes.md", "notes"},
		{"draft.markdown", "draft"},
		{"plain.txt", "plain"},
		{"noext", "noext"},
		{"", "document"},
	}
	for _, c := range cases {
		if got := baseName(c.in); got != c.want {
			t.Errorf("baseName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseElements(t *testing.T) {
	content := "# Title\n\ntext **bold**\n\n```go\ncode here\n```\n\n- one\n- two\n\n1. first\n2. second\n\n> quoted\n"
	els := ParseElements(content)
	want := []Element{
		{Kind: KindHeading, Level: 1, Text: "Title"},
		{Kind: KindParagraph, Text: "text bold"},
		{Kind: KindCodeBlock, Text: "code here"},
		{Kind: KindListItem, Text: "one"},
		{Kind: KindListItem, Text: "two"},
		{Kind: KindListItem, Ordered: true, Index: 1, Text: "first"},
		{Kind: KindListItem, Ordered: true, Index: 2, Text: "second"},
		{Kind: KindQuote, Text: "quoted"},
	}
	if len(els) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(els), len(want), els)
	}
	for i, w := range want {
		if els[i] != w {
			t.Errorf("els[%d] = %+v, want %+v", i, els[i], w)
		}
	}
}

func TestStripInline(t *testing.T) {
	cases := []struct{ in, want string }{
		{"**b** and *i*", "b and i"},
		{"`code` span", "code span"},
		{"[label](http://x)", "label"},
		{"![alt text](img.png)", "alt text"},
		{"~~gone~~", "gone"},
	}
	for _, c := range cases {
		if got := StripInline(c.in); got != c.want {
			t.Errorf("StripInline(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
