package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripInteractive removes viewer-only controls from exported markup.
// Copy buttons and their wrappers serve no purpose in a static file.
func stripInteractive(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	doc.Find(".code-copy-btn").Remove()
	doc.Find(".code-block-wrapper").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Children())
	})
	out, err := doc.Find("body").Html()
	if err != nil {
		return body
	}
	return out
}

// buildHTMLDocument wraps rendered body markup in a standalone printable
// page. Sizes arrive in points and become pixels for screen CSS.
func buildHTMLDocument(title, body string, basePt float64) string {
	base := PtToPx(basePt)
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\n")
	fmt.Fprintf(&b, `body {
  font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
  font-size: %.1fpx;
  line-height: 1.6;
  max-width: 800px;
  margin: 0 auto;
  padding: 2em;
  color: #1f2328;
}
h1 { font-size: %.1fpx; border-bottom: 1px solid #d1d9e0; padding-bottom: .3em; }
h2 { font-size: %.1fpx; }
h3 { font-size: %.1fpx; }
code, pre { font-family: ui-monospace, "SF Mono", Consolas, monospace; font-size: %.1fpx; }
pre { background: #f6f8fa; padding: 1em; overflow-x: auto; border-radius: 6px; }
blockquote { border-left: 4px solid #d1d9e0; margin-left: 0; padding-left: 1em; color: #59636e; }
img.markdown-image { max-width: 100%%; }
figure.markdown-figure { margin: 1em 0; }
figure.markdown-figure figcaption { color: #59636e; font-size: .9em; margin-top: .25em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d9e0; padding: .4em .8em; }
.markdown-alert { border-left: 4px solid #3B82F6; padding: .5em 1em; margin: 1em 0; }
.markdown-alert-title { font-weight: 600; margin: 0 0 .25em; }
@media print { body { max-width: none; } }
`,
		base,
		base*RatioH1,
		base*RatioH2,
		base*RatioH3,
		base*RatioCode)
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(stripInteractive(body))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
