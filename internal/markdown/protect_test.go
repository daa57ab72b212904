package markdown

import (
	"strings"
	"testing"
)

func TestProtect_Base64Image(t *testing.T) {
	src := "before ![logo](data:image/png;base64,AAAA) after"
	out, st := Protect(src)
	if out != "before %%BASE64IMG0%% after" {
		t.Errorf("out = %q", out)
	}
	images, _, _ := st.Counts()
	if images != 1 {
		t.Fatalf("images = %d, want 1", images)
	}
	if st.images[0].alt != "logo" {
		t.Errorf("alt = %q, want %q", st.images[0].alt, "logo")
	}
	if st.images[0].src != "data:image/png;base64,AAAA" {
		t.Errorf("src = %q", st.images[0].src)
	}
}

func TestProtect_Base64ImageNestedParens(t *testing.T) {
	// Balanced parens inside the data URI must not cut the match short.
	src := "![x](data:image/svg+xml,<svg>(a(b)c)</svg>) tail"
	out, st := Protect(src)
	if out != "%%BASE64IMG0%% tail" {
		t.Errorf("out = %q", out)
	}
	if got := st.images[0].src; got != "data:image/svg+xml,<svg>(a(b)c)</svg>" {
		t.Errorf("src = %q", got)
	}
}

func TestProtect_RegularImageUntouched(t *testing.T) {
	src := "![pic](https://example.com/a.png)"
	out, st := Protect(src)
	if out != src {
		t.Errorf("out = %q, want unchanged", out)
	}
	images, _, _ := st.Counts()
	if images != 0 {
		t.Errorf("images = %d, want 0", images)
	}
}

func TestProtect_BlockBeforeInline(t *testing.T) {
	src := "a $$x+y$$ b $z$ c"
	out, st := Protect(src)
	if out != "a %%MATH_BLOCK_0%% b %%MATH_INLINE_0%% c" {
		t.Errorf("out = %q", out)
	}
	_, block, inline := st.Counts()
	if block != 1 || inline != 1 {
		t.Errorf("block = %d inline = %d, want 1 1", block, inline)
	}
}

func TestProtect_BlockMathMultiline(t *testing.T) {
	src := "$$\n\\frac{a}{b}\n$$"
	out, st := Protect(src)
	if out != "%%MATH_BLOCK_0%%" {
		t.Errorf("out = %q", out)
	}
	if st.blockMath[0] != "\n\\frac{a}{b}\n" {
		t.Errorf("tex = %q", st.blockMath[0])
	}
}

func TestProtect_StrayDollarLiteral(t *testing.T) {
	src := "price is $5 and that is all"
	out, st := Protect(src)
	if out != src {
		t.Errorf("out = %q, want unchanged", out)
	}
	_, block, inline := st.Counts()
	if block != 0 || inline != 0 {
		t.Errorf("block = %d inline = %d, want 0 0", block, inline)
	}
}

func TestProtect_InlineMathNoNewline(t *testing.T) {
	// A pair of single dollars split across lines is not a formula.
	src := "first $a\nb$ second"
	out, _ := Protect(src)
	if out != src {
		t.Errorf("out = %q, want unchanged", out)
	}
}

func TestProtect_DollarsInsideDataURI(t *testing.T) {
	// Image extraction runs first, so dollars inside the URI are safe.
	src := "![a](data:image/png;base64,QQ$$RR$$SS) and $x$"
	out, st := Protect(src)
	if !strings.Contains(out, "%%BASE64IMG0%%") {
		t.Fatalf("image not protected: %q", out)
	}
	_, block, inline := st.Counts()
	if block != 0 {
		t.Errorf("block = %d, want 0", block)
	}
	if inline != 1 {
		t.Errorf("inline = %d, want 1", inline)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	src := "![logo](data:image/png;base64,AAAA) with $e=mc^2$"
	out, st := Protect(src)
	restored := st.Restore(out, KatexMarkup{}, nil)
	if !strings.Contains(restored, `src="data:image/png;base64,AAAA"`) {
		t.Errorf("image not restored: %q", restored)
	}
	if !strings.Contains(restored, "e=mc^2") {
		t.Errorf("math not restored: %q", restored)
	}
	if strings.Contains(restored, "%%") {
		t.Errorf("placeholder left behind: %q", restored)
	}
}

func TestRestore_ParagraphWrappedImageBecomesFigure(t *testing.T) {
	_, st := Protect("![logo](data:image/png;base64,AAAA)")
	restored := st.Restore("<p>%%BASE64IMG0%%</p>", KatexMarkup{}, nil)
	if strings.Contains(restored, "<p>") {
		t.Errorf("paragraph must be replaced: %q", restored)
	}
	if !strings.HasPrefix(restored, `<figure class="markdown-figure">`) {
		t.Errorf("figure missing: %q", restored)
	}
	if !strings.Contains(restored, `loading="lazy"`) {
		t.Errorf("lazy loading missing: %q", restored)
	}
	if !strings.Contains(restored, "<figcaption>logo</figcaption>") {
		t.Errorf("figcaption missing: %q", restored)
	}
}

func TestRestore_EmptyAltSkipsCaption(t *testing.T) {
	_, st := Protect("![](data:image/png;base64,AAAA)")
	restored := st.Restore("<p>%%BASE64IMG0%%</p>", KatexMarkup{}, nil)
	if strings.Contains(restored, "<figcaption>") {
		t.Errorf("empty alt must not produce a caption: %q", restored)
	}
}

func TestRestore_OrdinalIndices(t *testing.T) {
	src := "$a$ then $b$ then $c$"
	out, st := Protect(src)
	for _, want := range []string{"%%MATH_INLINE_0%%", "%%MATH_INLINE_1%%", "%%MATH_INLINE_2%%"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
	restored := st.Restore(out, KatexMarkup{}, nil)
	// Order must survive the round trip.
	ia, ib := strings.Index(restored, ">a<"), strings.Index(restored, ">b<")
	ic := strings.Index(restored, ">c<")
	if !(ia >= 0 && ia < ib && ib < ic) {
		t.Errorf("order lost: a=%d b=%d c=%d in %q", ia, ib, ic, restored)
	}
}
