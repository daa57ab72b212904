package markdown

import "testing"

func TestSourceHeadings(t *testing.T) {
	src := "# Title\n\nsome text\n\n## Section\n\n```go\n# not a heading\n```\n\n## Section\n\n#### Deep\n"
	hs := SourceHeadings(src)
	if len(hs) != 4 {
		t.Fatalf("len = %d, want 4: %+v", len(hs), hs)
	}
	if hs[0].Level != 1 || hs[0].Text != "Title" || hs[0].ID != "title" {
		t.Errorf("first heading = %+v", hs[0])
	}
	if hs[1].ID != "section" {
		t.Errorf("second heading ID = %q", hs[1].ID)
	}
	if hs[2].ID != "section-1" {
		t.Errorf("duplicate heading ID = %q, want section-1", hs[2].ID)
	}
	if hs[3].Level != 4 {
		t.Errorf("fourth heading level = %d", hs[3].Level)
	}
}

func TestSourceHeadingsNonHeadings(t *testing.T) {
	src := "#nospace\n####### seven\nplain\n"
	if hs := SourceHeadings(src); len(hs) != 0 {
		t.Errorf("expected no headings, got %+v", hs)
	}
}

func TestSourceHeadingsTildeFence(t *testing.T) {
	src := "~~~\n# inside\n~~~\n# outside\n"
	hs := SourceHeadings(src)
	if len(hs) != 1 || hs[0].Text != "outside" {
		t.Errorf("headings = %+v", hs)
	}
}

func TestSourceHeadingsTrailingHashes(t *testing.T) {
	hs := SourceHeadings("## Closed ##\n")
	if len(hs) != 1 || hs[0].Text != "Closed" {
		t.Errorf("headings = %+v", hs)
	}
}

// Inline markup must reduce to the rendered text node before slugging so
// the source outline anchors match the ids the renderer assigns.
func TestSourceHeadingsInlineMarkup(t *testing.T) {
	src := "# [Text](https://example.com)\n\n## Logo ![badge](b.png) Title\n"
	hs := SourceHeadings(src)
	if len(hs) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(hs), hs)
	}
	if hs[0].Text != "Text" || hs[0].ID != "text" {
		t.Errorf("linked heading = %+v, want Text/text", hs[0])
	}
	if hs[1].ID != "logo-title" {
		t.Errorf("image heading ID = %q, want logo-title", hs[1].ID)
	}

	rendered := NewRenderer().Render(src)
	if len(rendered.Headings) != 2 {
		t.Fatalf("rendered headings = %d, want 2", len(rendered.Headings))
	}
	for i := range hs {
		if hs[i].ID != rendered.Headings[i].ID {
			t.Errorf("heading[%d] id = %q, renderer assigned %q", i, hs[i].ID, rendered.Headings[i].ID)
		}
	}
}
