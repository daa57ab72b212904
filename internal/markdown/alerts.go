package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AlertLabels maps alert types to their displayed titles. The zero value
// is not usable; start from EnglishAlertLabels and override as needed.
type AlertLabels map[string]string

// EnglishAlertLabels returns the default title set.
func EnglishAlertLabels() AlertLabels {
	return AlertLabels{
		"note":      "Note",
		"tip":       "Tip",
		"important": "Important",
		"warning":   "Warning",
		"caution":   "Caution",
	}
}

var (
	alertTextRe   = regexp.MustCompile(`(?i)^\s*\[!(note|tip|important|warning|caution)\]`)
	alertMarkerRe = regexp.MustCompile(`(?is)^\s*\[!(note|tip|important|warning|caution)\]\s*(<br\s*/?>)?\s*`)
)

var alertIcons = map[string]string{
	"note":      `<svg class="markdown-alert-icon" viewBox="0 0 16 16" width="16" height="16" aria-hidden="true"><path d="M8 1a7 7 0 1 0 0 14A7 7 0 0 0 8 1Zm0 3.5a1 1 0 1 1 0 2 1 1 0 0 1 0-2ZM9 11H7V7h2Z"/></svg>`,
	"tip":       `<svg class="markdown-alert-icon" viewBox="0 0 16 16" width="16" height="16" aria-hidden="true"><path d="M8 1a5 5 0 0 0-3 9v2h6v-2a5 5 0 0 0-3-9ZM6 14h4v1H6Z"/></svg>`,
	"important": `<svg class="markdown-alert-icon" viewBox="0 0 16 16" width="16" height="16" aria-hidden="true"><path d="M2 2h12v9H9l-3 3v-3H2Zm6 2v3h0V4Zm0 4.5a.75.75 0 1 1 0 1.5.75.75 0 0 1 0-1.5Z"/></svg>`,
	"warning":   `<svg class="markdown-alert-icon" viewBox="0 0 16 16" width="16" height="16" aria-hidden="true"><path d="M8 1 1 14h14Zm0 4v5h0V5Zm0 6.25a.75.75 0 1 1 0 1.5.75.75 0 0 1 0-1.5Z"/></svg>`,
	"caution":   `<svg class="markdown-alert-icon" viewBox="0 0 16 16" width="16" height="16" aria-hidden="true"><path d="M5 1h6l4 4v6l-4 4H5l-4-4V5Zm3 3v4h0V4Zm0 6a.75.75 0 1 1 0 1.5A.75.75 0 0 1 8 10Z"/></svg>`,
}

// transformAlerts rewrites GitHub-style alert blockquotes into styled
// divs. Blockquotes whose first paragraph does not begin with a known
// `[!TYPE]` marker are left untouched.
func transformAlerts(doc *goquery.Document, labels AlertLabels) {
	doc.Find("blockquote").Each(func(_ int, bq *goquery.Selection) {
		first := bq.Find("p").First()
		if first.Length() == 0 {
			return
		}
		m := alertTextRe.FindStringSubmatch(strings.TrimSpace(first.Text()))
		if m == nil {
			return
		}
		kind := strings.ToLower(m[1])

		inner, err := first.Html()
		if err != nil {
			return
		}
		stripped := alertMarkerRe.ReplaceAllString(inner, "")
		if strings.TrimSpace(stripped) == "" {
			first.Remove()
		} else {
			first.SetHtml(stripped)
		}

		body, err := bq.Html()
		if err != nil {
			return
		}
		label := labels[kind]
		if label == "" {
			label = strings.ToUpper(kind[:1]) + kind[1:]
		}
		bq.ReplaceWithHtml(fmt.Sprintf(
			`<div class="markdown-alert markdown-alert-%s"><p class="markdown-alert-title">%s%s</p>%s</div>`,
			kind, alertIcons[kind], label, body))
	})
}
