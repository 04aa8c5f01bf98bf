package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	marginMM   = 18.0
	bodySize   = 11.0
	codeSize   = 9.5
	listIndent = 6.0
	blockGap   = 2.5
)

var headingSizes = map[int]float64{1: 20, 2: 16, 3: 14, 4: 12.5, 5: 11.5, 6: 11}

// PDF lays out a Markdown document on A4 pages. Text is set in the core
// Helvetica and Courier fonts, so characters outside cp1252 are replaced.
func PDF(markdown string) ([]byte, error) {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetTitle(Title, true)
	pdf.SetCreator("newsagent", false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, strconv.Itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	w := &pdfWriter{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		src:  src,
		size: bodySize,
	}
	if err := ast.Walk(doc, w.visit); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type listState struct {
	ordered bool
	next    int
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	src []byte

	size   float64
	bold   int
	italic int
	mono   bool
	link   string
	lists  []listState
}

func (w *pdfWriter) lineHeight() float64 {
	return w.size * 0.5
}

func (w *pdfWriter) applyFont() {
	family := "Helvetica"
	if w.mono {
		family = "Courier"
	}
	style := ""
	if w.bold > 0 {
		style += "B"
	}
	if w.italic > 0 {
		style += "I"
	}
	w.pdf.SetFont(family, style, w.size)
	if w.link != "" {
		w.pdf.SetTextColor(30, 80, 180)
	} else {
		w.pdf.SetTextColor(20, 20, 20)
	}
}

func (w *pdfWriter) write(s string) {
	if s == "" {
		return
	}
	w.applyFont()
	if w.link != "" {
		w.pdf.WriteLinkString(w.lineHeight(), w.tr(s), w.link)
		return
	}
	w.pdf.Write(w.lineHeight(), w.tr(s))
}

func (w *pdfWriter) setIndent() {
	w.pdf.SetLeftMargin(marginMM + float64(len(w.lists))*listIndent)
}

func (w *pdfWriter) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := n.(type) {
	case *ast.Heading:
		if entering {
			w.size = headingSizes[n.Level]
			w.bold++
			w.pdf.Ln(blockGap)
		} else {
			w.pdf.Ln(w.lineHeight() + blockGap)
			w.bold--
			w.size = bodySize
		}

	case *ast.Paragraph:
		if !entering {
			w.pdf.Ln(w.lineHeight() + blockGap)
		}

	case *ast.TextBlock:
		if !entering {
			w.pdf.Ln(w.lineHeight())
		}

	case *ast.List:
		if entering {
			w.lists = append(w.lists, listState{ordered: n.IsOrdered(), next: n.Start})
		} else {
			w.lists = w.lists[:len(w.lists)-1]
			w.pdf.Ln(blockGap)
		}
		w.setIndent()

	case *ast.ListItem:
		if entering && len(w.lists) > 0 {
			l := &w.lists[len(w.lists)-1]
			marker := "•"
			if l.ordered {
				marker = strconv.Itoa(l.next) + "."
				l.next++
			}
			left, _, _, _ := w.pdf.GetMargins()
			w.pdf.SetX(left - listIndent + 1)
			w.write(marker)
			w.pdf.SetX(left)
		}

	case *ast.Blockquote:
		if entering {
			w.italic++
		} else {
			w.italic--
		}

	case *ast.FencedCodeBlock:
		if entering {
			w.code(n.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			w.code(n.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			pageW, _ := w.pdf.GetPageSize()
			y := w.pdf.GetY() + blockGap
			w.pdf.SetDrawColor(180, 180, 180)
			w.pdf.Line(marginMM, y, pageW-marginMM, y)
			w.pdf.Ln(2 * blockGap)
		}

	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if n.Level >= 2 {
			w.bold += delta
		} else {
			w.italic += delta
		}

	case *ast.CodeSpan:
		w.mono = entering

	case *ast.Link:
		if entering {
			w.link = string(n.Destination)
		} else {
			w.link = ""
		}

	case *ast.AutoLink:
		if entering {
			url := string(n.URL(w.src))
			w.link = url
			w.write(url)
			w.link = ""
		}
		return ast.WalkSkipChildren, nil

	case *ast.Image:
		if entering {
			w.write(string(n.Destination))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			w.write(string(n.Segment.Value(w.src)))
			switch {
			case n.HardLineBreak():
				w.pdf.Ln(w.lineHeight())
			case n.SoftLineBreak():
				w.write(" ")
			}
		}

	case *ast.String:
		if entering {
			w.write(string(n.Value))
		}
	}
	return ast.WalkContinue, nil
}

func (w *pdfWriter) code(lines *text.Segments) {
	size := w.size
	w.size, w.mono = codeSize, true
	w.applyFont()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.src)), "\r\n")
		w.pdf.MultiCell(0, w.lineHeight(), w.tr(line), "", "L", false)
	}
	w.size, w.mono = size, false
	w.pdf.Ln(blockGap)
}
