package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/solheim/lesa/internal/models"
)

var (
	headingImageRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	headingLinkRe  = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
)

// plainHeadingText reduces a heading's inline markup to what the rendered
// text node carries: links keep their label, images disappear entirely
// (alt is an attribute, not text).
func plainHeadingText(text string) string {
	text = headingImageRe.ReplaceAllString(text, "")
	text = headingLinkRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// SourceHeadings extracts ATX headings from raw markdown without running
// the full render pipeline. Fenced code blocks are skipped so that
// comment lines starting with # inside code do not show up as headings.
// IDs follow the same slug and duplicate-suffix rules as rendered output.
func SourceHeadings(src string) []models.Heading {
	var out []models.Heading
	seen := make(map[string]int)
	inFence := false
	fenceMarker := ""

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if marker := fenceStart(trimmed); marker != "" {
			if inFence {
				if strings.HasPrefix(trimmed, fenceMarker) {
					inFence = false
				}
			} else {
				inFence = true
				fenceMarker = marker
			}
			continue
		}
		if inFence {
			continue
		}

		level, text := atxHeading(trimmed)
		if level == 0 {
			continue
		}
		text = plainHeadingText(text)
		id := Slug(text)
		if n, dup := seen[id]; dup {
			seen[id] = n + 1
			id = fmt.Sprintf("%s-%d", id, n)
		} else {
			seen[id] = 1
		}
		out = append(out, models.Heading{Level: level, Text: text, ID: id})
	}
	return out
}

func fenceStart(line string) string {
	if strings.HasPrefix(line, "```") {
		return "```"
	}
	if strings.HasPrefix(line, "~~~") {
		return "~~~"
	}
	return ""
}

// atxHeading returns the heading level (1..6) and trimmed text of an
// ATX heading line, or 0 when the line is not a heading.
func atxHeading(line string) (int, string) {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0, ""
	}
	rest := line[n:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, ""
	}
	text := strings.TrimSpace(rest)
	text = strings.TrimRight(text, "#")
	return n, strings.TrimSpace(text)
}
