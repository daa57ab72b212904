package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// buildPDF walks the Markdown AST into an A4 portrait document. The
// body size arrives in points; headings and code scale by the shared
// ratios.
func buildPDF(ctx context.Context, content string, basePt float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", basePt)

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	source := []byte(content)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &pdfWriter{pdf: pdf, source: source, base: basePt}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("pdf: walk: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	source []byte
	base   float64

	bold      bool
	italic    bool
	listDepth int
	ordinals  []int
}

func (r *pdfWriter) headingSize(level int) float64 {
	switch level {
	case 1:
		return r.base * RatioH1
	case 2:
		return r.base * RatioH2
	case 3:
		return r.base * RatioH3
	default:
		return r.base * 1.05
	}
}

func (r *pdfWriter) bodyFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont("Helvetica", style, r.base)
}

func (r *pdfWriter) lineHeight() float64 {
	return r.base * 0.55
}

func (r *pdfWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		h := n.(*ast.Heading)
		if entering {
			r.pdf.Ln(4)
			r.pdf.SetFont("Helvetica", "B", r.headingSize(h.Level))
		} else {
			r.pdf.Ln(r.lineHeight() + 2)
			r.bodyFont()
		}

	case ast.KindParagraph:
		if !entering {
			r.pdf.Ln(r.lineHeight() + 2)
		}

	case ast.KindText:
		if entering {
			r.pdf.Write(r.lineHeight(), string(n.Text(r.source)))
		}

	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.bodyFont()

	case ast.KindCodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", r.base*RatioCode)
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					r.pdf.Write(r.lineHeight(), string(t.Segment.Value(r.source)))
				}
			}
		} else {
			r.bodyFont()
		}
		return ast.WalkSkipChildren, nil

	case ast.KindFencedCodeBlock:
		if entering {
			r.writeCodeLines(n.(*ast.FencedCodeBlock).Lines())
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			r.writeCodeLines(n.(*ast.CodeBlock).Lines())
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			r.pdf.SetTextColor(90, 99, 110)
			r.pdf.SetLeftMargin(20)
		} else {
			r.pdf.SetTextColor(0, 0, 0)
			r.pdf.SetLeftMargin(15)
		}

	case ast.KindList:
		if entering {
			r.listDepth++
			start := 0
			if l := n.(*ast.List); l.IsOrdered() {
				start = l.Start
				if start == 0 {
					start = 1
				}
			}
			r.ordinals = append(r.ordinals, start)
		} else {
			r.listDepth--
			r.ordinals = r.ordinals[:len(r.ordinals)-1]
			if r.listDepth == 0 {
				r.pdf.Ln(2)
			}
		}

	case ast.KindListItem:
		if entering {
			r.pdf.Ln(r.lineHeight())
			r.pdf.SetX(15 + float64(r.listDepth)*5)
			last := len(r.ordinals) - 1
			if r.ordinals[last] > 0 {
				r.pdf.Write(r.lineHeight(), fmt.Sprintf("%d. ", r.ordinals[last]))
				r.ordinals[last]++
			} else {
				r.pdf.Write(r.lineHeight(), "- ")
			}
		}

	case ast.KindThematicBreak:
		if entering {
			r.pdf.Ln(3)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(3)
		}

	case extast.KindTable:
		if entering {
			r.writeTable(n.(*extast.Table))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfWriter) writeCodeLines(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", r.base*RatioCode)
	r.pdf.SetFillColor(246, 248, 250)
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.pdf.MultiCell(0, r.lineHeight(), string(seg.Value(r.source)), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.bodyFont()
	r.pdf.Ln(2)
}

func (r *pdfWriter) writeTable(table *extast.Table) {
	var rows [][]string
	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch row := child.(type) {
			case *extast.TableRow:
				rows = append(rows, r.cellTexts(row))
			case *extast.TableHeader:
				rows = append(rows, r.cellTexts(row))
			}
		}
	}
	collect(table)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	r.pdf.Ln(2)
	colWidth := 180.0 / float64(len(rows[0]))
	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont("Helvetica", "B", r.base*0.9)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont("Helvetica", "", r.base*0.9)
			r.pdf.SetFillColor(255, 255, 255)
		}
		r.pdf.SetX(15)
		for _, cell := range row {
			r.pdf.CellFormat(colWidth, r.lineHeight()+2, cell, "1", 0, "L", true, 0, "")
		}
		r.pdf.Ln(r.lineHeight() + 2)
	}
	r.bodyFont()
	r.pdf.Ln(2)
}

func (r *pdfWriter) cellTexts(row ast.Node) []string {
	var out []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			out = append(out, string(cell.Text(r.source)))
		}
	}
	return out
}
