// Package toc builds tables of contents from heading outlines and
// answers scroll-position queries for outline highlighting.
package toc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/solheim/lesa/internal/models"
)

// DefaultActiveOffset is the scroll offset used when deciding which
// heading is currently active.
const DefaultActiveOffset = 100

// Entry is one row of a table of contents.
type Entry struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// Outline converts an ordered heading list into TOC entries. Headings
// without an ID get a positional fallback anchor.
func Outline(headings []models.Heading) []Entry {
	entries := make([]Entry, 0, len(headings))
	for i, h := range headings {
		anchor := h.ID
		if anchor == "" {
			anchor = fmt.Sprintf("heading-%d", i)
		}
		entries = append(entries, Entry{Level: h.Level, Text: h.Text, Anchor: anchor})
	}
	return entries
}

// FromHTML extracts TOC entries from rendered HTML, used when only the
// final markup is available.
func FromHTML(html string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("toc: parse html: %w", err)
	}
	var entries []Entry
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		anchor, _ := s.Attr("id")
		if anchor == "" {
			anchor = fmt.Sprintf("heading-%d", i)
		}
		tag := goquery.NodeName(s)
		entries = append(entries, Entry{
			Level:  int(tag[1] - '0'),
			Text:   strings.TrimSpace(s.Text()),
			Anchor: anchor,
		})
	})
	return entries, nil
}

// Active returns the index of the heading the viewport currently sits in:
// the last heading whose offset is at or above scrollTop+offset. Returns
// -1 when no heading qualifies. Offsets must be in document order.
func Active(offsets []int, scrollTop, offset int) int {
	active := -1
	for i, top := range offsets {
		if top <= scrollTop+offset {
			active = i
		} else {
			break
		}
	}
	return active
}
