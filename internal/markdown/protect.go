package markdown

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
)

// Placeholder formats. The tokens contain no Markdown metacharacters so
// they pass through the parser untouched.
const (
	imagePlaceholder  = "%%BASE64IMG%d%%"
	blockPlaceholder  = "%%MATH_BLOCK_%d%%"
	inlinePlaceholder = "%%MATH_INLINE_%d%%"
)

var (
	blockMathRe  = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	inlineMathRe = regexp.MustCompile(`\$([^$\n]+?)\$`)
)

type protectedImage struct {
	alt string
	src string
}

// ProtectState remembers the snippets removed by Protect so Restore can
// substitute them back after parsing.
type ProtectState struct {
	images     []protectedImage
	blockMath  []string
	inlineMath []string
}

// Protect replaces base64 image markup and math segments with opaque
// placeholders. Base64 images go first so that math delimiters inside a
// data URI cannot be mistaken for formulas, then block math, then inline.
func Protect(src string) (string, *ProtectState) {
	st := &ProtectState{}
	out := protectBase64Images(src, st)

	out = blockMathRe.ReplaceAllStringFunc(out, func(m string) string {
		tex := m[2 : len(m)-2]
		st.blockMath = append(st.blockMath, tex)
		return fmt.Sprintf(blockPlaceholder, len(st.blockMath)-1)
	})

	out = inlineMathRe.ReplaceAllStringFunc(out, func(m string) string {
		tex := m[1 : len(m)-1]
		st.inlineMath = append(st.inlineMath, tex)
		return fmt.Sprintf(inlinePlaceholder, len(st.inlineMath)-1)
	})

	return out, st
}

// protectBase64Images extracts `![alt](data:image/...)` spans. The URL is
// matched with a parenthesis depth counter so nested balanced parens inside
// the data URI do not cut the match short.
func protectBase64Images(src string, st *ProtectState) string {
	var b strings.Builder
	i := 0
	for {
		rel := strings.Index(src[i:], "![")
		if rel < 0 {
			b.WriteString(src[i:])
			return b.String()
		}
		start := i + rel

		altEnd := strings.Index(src[start:], "](")
		if altEnd < 0 {
			b.WriteString(src[i:])
			return b.String()
		}
		altEnd += start
		urlStart := altEnd + 2

		if !strings.HasPrefix(src[urlStart:], "data:image/") {
			b.WriteString(src[i : start+2])
			i = start + 2
			continue
		}

		end := balancedParenEnd(src, urlStart)
		if end < 0 {
			b.WriteString(src[i : start+2])
			i = start + 2
			continue
		}

		b.WriteString(src[i:start])
		st.images = append(st.images, protectedImage{
			alt: src[start+2 : altEnd],
			src: src[urlStart:end],
		})
		b.WriteString(fmt.Sprintf(imagePlaceholder, len(st.images)-1))
		i = end + 1
	}
}

// balancedParenEnd returns the index of the closing paren matching the open
// paren just before start, or -1 when the parens never balance.
func balancedParenEnd(src string, start int) int {
	depth := 1
	for j := start; j < len(src); j++ {
		switch src[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// Restore substitutes placeholders in rendered HTML back: math through the
// typesetter, base64 images as lazy-loading figures. A placeholder that is
// the sole content of a paragraph takes the paragraph's place, since figure
// is not valid inside p. A typeset failure is logged and leaves the raw
// delimited formula visible.
func (st *ProtectState) Restore(out string, ts Typesetter, logger *slog.Logger) string {
	for i, tex := range st.inlineMath {
		rendered, err := ts.Inline(tex)
		if err != nil {
			if logger != nil {
				logger.Warn("inline math typeset failed", slog.String("error", err.Error()))
			}
			rendered = html.EscapeString("$" + tex + "$")
		}
		out = strings.ReplaceAll(out, fmt.Sprintf(inlinePlaceholder, i), rendered)
	}
	for i, tex := range st.blockMath {
		rendered, err := ts.Display(tex)
		if err != nil {
			if logger != nil {
				logger.Warn("block math typeset failed", slog.String("error", err.Error()))
			}
			rendered = html.EscapeString("$$" + tex + "$$")
		}
		out = strings.ReplaceAll(out, fmt.Sprintf(blockPlaceholder, i), rendered)
	}
	for i, img := range st.images {
		alt := html.EscapeString(img.alt)
		var b strings.Builder
		b.WriteString(`<figure class="markdown-figure"><img src="`)
		b.WriteString(img.src)
		b.WriteString(`" alt="`)
		b.WriteString(alt)
		b.WriteString(`" class="markdown-image" loading="lazy" />`)
		if img.alt != "" {
			b.WriteString("<figcaption>" + alt + "</figcaption>")
		}
		b.WriteString("</figure>")
		fig := b.String()

		placeholder := fmt.Sprintf(imagePlaceholder, i)
		if wrapped := "<p>" + placeholder + "</p>"; strings.Contains(out, wrapped) {
			out = strings.ReplaceAll(out, wrapped, fig)
		}
		out = strings.ReplaceAll(out, placeholder, fig)
	}
	return out
}

// Counts reports how many snippets of each category were protected.
func (st *ProtectState) Counts() (images, block, inline int) {
	return len(st.images), len(st.blockMath), len(st.inlineMath)
}
