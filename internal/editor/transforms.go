package editor

import (
	"fmt"
	"regexp"
	"strings"
)

// A Transform rewrites editor content around a selection. It returns the
// new content and the new selection bounds.
type Transform func(content string, selStart, selEnd int) (string, int, int)

// wrap surrounds the selection with before/after markers. With an empty
// selection the markers are inserted and the cursor lands between them.
func wrap(before, after string) Transform {
	return func(content string, selStart, selEnd int) (string, int, int) {
		selStart, selEnd = clampSel(content, selStart, selEnd)
		sel := content[selStart:selEnd]
		out := content[:selStart] + before + sel + after + content[selEnd:]
		return out, selStart + len(before), selStart + len(before) + len(sel)
	}
}

// Inline style transforms.
var (
	Bold          = wrap("**", "**")
	Italic        = wrap("*", "*")
	Strikethrough = wrap("~~", "~~")
	Highlight     = wrap("==", "==")
	InlineCode    = wrap("`", "`")
	Superscript   = wrap("^", "^")
	Subscript     = wrap("~", "~")
)

// CodeFence wraps the selection in a fenced code block.
func CodeFence(content string, selStart, selEnd int) (string, int, int) {
	selStart, selEnd = clampSel(content, selStart, selEnd)
	sel := content[selStart:selEnd]
	block := "```\n" + sel + "\n```"
	out := content[:selStart] + block + content[selEnd:]
	start := selStart + 4
	return out, start, start + len(sel)
}

// Heading prefixes each selected line with a level-n heading marker,
// replacing any existing marker.
func Heading(level int) Transform {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	marker := strings.Repeat("#", level) + " "
	return eachLine(func(line string) string {
		return marker + headingMarkerRe.ReplaceAllString(line, "")
	})
}

var headingMarkerRe = regexp.MustCompile(`^#{1,6}\s+`)

// UnorderedList prefixes each selected line with a bullet.
var UnorderedList = eachLine(func(line string) string { return "- " + line })

// TaskList prefixes each selected line with an open task marker.
var TaskList = eachLine(func(line string) string { return "- [ ] " + line })

// Blockquote prefixes each selected line with a quote marker.
var Blockquote = eachLine(func(line string) string { return "> " + line })

// OrderedList numbers the selected lines starting from 1.
func OrderedList(content string, selStart, selEnd int) (string, int, int) {
	selStart, selEnd = clampSel(content, selStart, selEnd)
	ls, le := lineBounds(content, selStart, selEnd)
	lines := strings.Split(content[ls:le], "\n")
	for i, line := range lines {
		lines[i] = fmt.Sprintf("%d. %s", i+1, line)
	}
	block := strings.Join(lines, "\n")
	out := content[:ls] + block + content[le:]
	return out, ls, ls + len(block)
}

// Link turns the selection into link markup. The selection becomes the
// link text and the cursor selects the url placeholder.
func Link(content string, selStart, selEnd int) (string, int, int) {
	selStart, selEnd = clampSel(content, selStart, selEnd)
	text := content[selStart:selEnd]
	if text == "" {
		text = "link text"
	}
	md := "[" + text + "](url)"
	out := content[:selStart] + md + content[selEnd:]
	urlStart := selStart + 1 + len(text) + 2
	return out, urlStart, urlStart + len("url")
}

// Image inserts image markup. The selection becomes the alt text and the
// cursor selects the url placeholder.
func Image(content string, selStart, selEnd int) (string, int, int) {
	selStart, selEnd = clampSel(content, selStart, selEnd)
	alt := content[selStart:selEnd]
	md := "![" + alt + "](url)"
	out := content[:selStart] + md + content[selEnd:]
	urlStart := selStart + 2 + len(alt) + 2
	return out, urlStart, urlStart + len("url")
}

// HorizontalRule inserts a rule on its own line at the selection.
func HorizontalRule(content string, selStart, selEnd int) (string, int, int) {
	selStart, selEnd = clampSel(content, selStart, selEnd)
	md := "\n---\n"
	out := content[:selStart] + md + content[selEnd:]
	pos := selStart + len(md)
	return out, pos, pos
}

// Footnote inserts a reference at the selection and an empty definition
// at the end of the document.
func Footnote(content string, selStart, selEnd int) (string, int, int) {
	selStart, selEnd = clampSel(content, selStart, selEnd)
	n := strings.Count(content, "[^") + 1
	ref := fmt.Sprintf("[^%d]", n)
	out := content[:selStart] + ref + content[selEnd:]
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	out += fmt.Sprintf("\n[^%d]: \n", n)
	pos := selStart + len(ref)
	return out, pos, pos
}

// Table inserts an empty pipe table with the given dimensions at the
// selection, replacing it.
func Table(rows, cols int) Transform {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return func(content string, selStart, selEnd int) (string, int, int) {
		selStart, selEnd = clampSel(content, selStart, selEnd)
		var b strings.Builder
		b.WriteString("\n|")
		for c := 0; c < cols; c++ {
			fmt.Fprintf(&b, " Header %d |", c+1)
		}
		b.WriteString("\n|")
		for c := 0; c < cols; c++ {
			b.WriteString(" --- |")
		}
		for r := 0; r < rows; r++ {
			b.WriteString("\n|")
			for c := 0; c < cols; c++ {
				b.WriteString("   |")
			}
		}
		b.WriteString("\n")
		md := b.String()
		out := content[:selStart] + md + content[selEnd:]
		pos := selStart + len(md)
		return out, pos, pos
	}
}

// Formula applies the math upgrade rules: block math stays, inline math
// is promoted to block, multiline selections become block formulas,
// other selections become inline, and an empty selection inserts an
// empty block with the cursor inside.
func Formula(content string, selStart, selEnd int) (string, int, int) {
	selStart, selEnd = clampSel(content, selStart, selEnd)
	sel := content[selStart:selEnd]

	switch {
	case sel == "":
		md := "\n$$\n\n$$\n"
		out := content[:selStart] + md + content[selEnd:]
		pos := selStart + 4
		return out, pos, pos
	case strings.HasPrefix(sel, "$$") && strings.HasSuffix(sel, "$$") && len(sel) >= 4:
		return content, selStart, selEnd
	case strings.HasPrefix(sel, "$") && strings.HasSuffix(sel, "$") && len(sel) >= 2:
		inner := sel[1 : len(sel)-1]
		md := "$$" + inner + "$$"
		out := content[:selStart] + md + content[selEnd:]
		return out, selStart, selStart + len(md)
	case strings.Contains(sel, "\n"):
		md := "$$\n" + sel + "\n$$"
		out := content[:selStart] + md + content[selEnd:]
		return out, selStart, selStart + len(md)
	default:
		md := "$" + sel + "$"
		out := content[:selStart] + md + content[selEnd:]
		return out, selStart, selStart + len(md)
	}
}

// clearFormattingSteps is ordered: fences and math first so their bodies
// survive, inline styles next, then line-level structure.
var clearFormattingSteps = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("(?s)```[^\n]*\n(.*?)\n?```"), "$1"},
	{regexp.MustCompile(`(?s)\$\$(.+?)\$\$`), "$1"},
	{regexp.MustCompile(`\$([^$\n]+?)\$`), "$1"},
	{regexp.MustCompile(`\*\*\*([^*]+)\*\*\*`), "$1"},
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},
	{regexp.MustCompile(`\*([^*]+)\*`), "$1"},
	{regexp.MustCompile(`~~([^~]+)~~`), "$1"},
	{regexp.MustCompile(`==([^=]+)==`), "$1"},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`), "$1"},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`), "$1"},
	{regexp.MustCompile(`(?m)^\[\^[^\]]+\]:[^\n]*\n?`), ""},
	{regexp.MustCompile(`\[\^[^\]]+\]`), ""},
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{regexp.MustCompile(`(?m)^\[[ xX]\]\s*`), ""},
	{regexp.MustCompile(`(?m)^(?:>\s?)+`), ""},
	{regexp.MustCompile(`(?m)^(?:-{3,}|\*{3,}|_{3,})\s*$`), ""},
	{regexp.MustCompile(`\^([^^\n]+)\^`), "$1"},
	{regexp.MustCompile(`~([^~\n]+)~`), "$1"},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// ClearFormatting strips Markdown markup from the selection, keeping
// the text. An empty selection leaves the content untouched. Applying
// it twice gives the same result as once.
func ClearFormatting(content string, selStart, selEnd int) (string, int, int) {
	selStart, selEnd = clampSel(content, selStart, selEnd)
	if selStart == selEnd {
		return content, selStart, selEnd
	}
	out := content[selStart:selEnd]
	for _, step := range clearFormattingSteps {
		out = step.re.ReplaceAllString(out, step.repl)
	}
	out = strings.TrimSpace(out)
	result := content[:selStart] + out + content[selEnd:]
	return result, selStart, selStart + len(out)
}

// eachLine applies fn to every line covered by the selection and selects
// the rewritten block.
func eachLine(fn func(string) string) Transform {
	return func(content string, selStart, selEnd int) (string, int, int) {
		selStart, selEnd = clampSel(content, selStart, selEnd)
		ls, le := lineBounds(content, selStart, selEnd)
		lines := strings.Split(content[ls:le], "\n")
		for i, line := range lines {
			lines[i] = fn(line)
		}
		block := strings.Join(lines, "\n")
		out := content[:ls] + block + content[le:]
		return out, ls, ls + len(block)
	}
}

// lineBounds widens [selStart, selEnd) to whole lines.
func lineBounds(content string, selStart, selEnd int) (int, int) {
	ls := strings.LastIndexByte(content[:selStart], '\n') + 1
	le := selEnd
	if i := strings.IndexByte(content[selEnd:], '\n'); i >= 0 {
		le = selEnd + i
	} else {
		le = len(content)
	}
	return ls, le
}

func clampSel(content string, selStart, selEnd int) (int, int) {
	if selStart > selEnd {
		selStart, selEnd = selEnd, selStart
	}
	if selStart < 0 {
		selStart = 0
	}
	if selStart > len(content) {
		selStart = len(content)
	}
	if selEnd < 0 {
		selEnd = 0
	}
	if selEnd > len(content) {
		selEnd = len(content)
	}
	return selStart, selEnd
}

// Named resolves a transform by its action name. Heading levels and table
// dimensions come from the opts. Unknown names return false.
func Named(name string, opts TransformOptions) (Transform, bool) {
	switch name {
	case "bold":
		return Bold, true
	case "italic":
		return Italic, true
	case "strikethrough":
		return Strikethrough, true
	case "highlight":
		return Highlight, true
	case "inline-code":
		return InlineCode, true
	case "superscript":
		return Superscript, true
	case "subscript":
		return Subscript, true
	case "code-fence":
		return CodeFence, true
	case "heading":
		return Heading(opts.Level), true
	case "unordered-list":
		return UnorderedList, true
	case "ordered-list":
		return OrderedList, true
	case "task-list":
		return TaskList, true
	case "blockquote":
		return Blockquote, true
	case "link":
		return Link, true
	case "image":
		return Image, true
	case "horizontal-rule":
		return HorizontalRule, true
	case "footnote":
		return Footnote, true
	case "table":
		return Table(opts.Rows, opts.Cols), true
	case "formula":
		return Formula, true
	case "clear-formatting":
		return ClearFormatting, true
	}
	return nil, false
}

// TransformOptions carries the parameters of parameterized transforms.
type TransformOptions struct {
	Level int
	Rows  int
	Cols  int
}
