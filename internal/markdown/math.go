package markdown

import (
	"fmt"
	"html"
)

// Typesetter converts TeX source into display HTML. Implementations must
// be safe for concurrent use.
type Typesetter interface {
	// Display typesets a block-level formula.
	Display(tex string) (string, error)
	// Inline typesets an inline formula.
	Inline(tex string) (string, error)
}

// KatexMarkup emits KaTeX-compatible wrapper markup carrying the TeX
// source as a MathML annotation. A KaTeX-equipped host styles it
// client-side; without one the formula still shows as readable text.
type KatexMarkup struct{}

func (KatexMarkup) Display(tex string) (string, error) {
	return fmt.Sprintf(
		`<span class="katex-display"><span class="katex"><annotation encoding="application/x-tex">%s</annotation></span></span>`,
		html.EscapeString(tex)), nil
}

func (KatexMarkup) Inline(tex string) (string, error) {
	return fmt.Sprintf(
		`<span class="katex"><annotation encoding="application/x-tex">%s</annotation></span>`,
		html.EscapeString(tex)), nil
}
