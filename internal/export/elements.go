package export

import (
	"regexp"
	"strings"
)

// ElementKind classifies one flat block of a document.
type ElementKind int

const (
	KindParagraph ElementKind = iota
	KindHeading
	KindCodeBlock
	KindListItem
	KindQuote
)

// Element is one block in the flat document model used by the DOCX
// serializer: no nesting, inline styling stripped to text.
type Element struct {
	Kind    ElementKind
	Text    string
	Level   int  // heading level, 1..6
	Ordered bool // ordered list item
	Index   int  // 1-based position within an ordered list
}

var (
	headingLineRe   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	unorderedLineRe = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	orderedLineRe   = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	quoteLineRe     = regexp.MustCompile(`^>\s?(.*)$`)

	inlineImageRe  = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	inlineLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	inlineBoldItRe = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	inlineCodeRe   = regexp.MustCompile("`([^`]+)`")
	inlineStrikeRe = regexp.MustCompile(`~~([^~]+)~~`)
)

// ParseElements converts Markdown into the flat element list, line by
// line. Blank lines separate blocks and are dropped.
func ParseElements(content string) []Element {
	var (
		out       []Element
		inFence   bool
		fence     []string
		orderedAt int
	)
	flushFence := func() {
		out = append(out, Element{Kind: KindCodeBlock, Text: strings.Join(fence, "\n")})
		fence = nil
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence {
				flushFence()
			}
			inFence = !inFence
			continue
		}
		if inFence {
			fence = append(fence, line)
			continue
		}
		trimmed := strings.TrimRight(line, " \t")
		switch {
		case strings.TrimSpace(trimmed) == "":
			orderedAt = 0
		case headingLineRe.MatchString(trimmed):
			m := headingLineRe.FindStringSubmatch(trimmed)
			out = append(out, Element{Kind: KindHeading, Level: len(m[1]), Text: StripInline(m[2])})
			orderedAt = 0
		case orderedLineRe.MatchString(trimmed):
			m := orderedLineRe.FindStringSubmatch(trimmed)
			orderedAt++
			out = append(out, Element{Kind: KindListItem, Ordered: true, Index: orderedAt, Text: StripInline(m[1])})
		case unorderedLineRe.MatchString(trimmed):
			m := unorderedLineRe.FindStringSubmatch(trimmed)
			out = append(out, Element{Kind: KindListItem, Text: StripInline(m[1])})
			orderedAt = 0
		case quoteLineRe.MatchString(trimmed):
			m := quoteLineRe.FindStringSubmatch(trimmed)
			out = append(out, Element{Kind: KindQuote, Text: StripInline(m[1])})
			orderedAt = 0
		default:
			out = append(out, Element{Kind: KindParagraph, Text: StripInline(trimmed)})
			orderedAt = 0
		}
	}
	if inFence && len(fence) > 0 {
		flushFence()
	}
	return out
}

// StripInline removes inline Markdown styling, keeping the text. Images
// reduce to their alt text, links to their label.
func StripInline(s string) string {
	s = inlineImageRe.ReplaceAllString(s, "$1")
	s = inlineLinkRe.ReplaceAllString(s, "$1")
	s = inlineBoldItRe.ReplaceAllString(s, "$1")
	s = inlineStrikeRe.ReplaceAllString(s, "$1")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	return s
}
