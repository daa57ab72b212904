package markdown

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
	// Word characters plus CJK ideographs survive; everything else
	// collapses to a single hyphen.
	nonSlugRe = regexp.MustCompile(`[^\w\x{4e00}-\x{9fa5}]+`)
)

// Slug derives an anchor identifier from heading text. Deterministic:
// the same text always yields the same slug.
func Slug(text string) string {
	s := strings.ToLower(text)
	s = htmlTagRe.ReplaceAllString(s, "")
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "heading"
	}
	return s
}
