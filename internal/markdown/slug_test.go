package markdown

import "testing"

func TestSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces  everywhere  ", "spaces-everywhere"},
		{"C++ & Go!", "c-go"},
		{"snake_case stays", "snake_case-stays"},
		{"<em>Styled</em> heading", "styled-heading"},
		{"中文标题", "中文标题"},
		{"混合 Mixed 标题", "混合-mixed-标题"},
		{"!!!", "heading"},
		{"", "heading"},
		{"---already-hyphenated---", "already-hyphenated"},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlug_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Slug("Some Heading"); got != "some-heading" {
			t.Fatalf("run %d: got %q", i, got)
		}
	}
}
