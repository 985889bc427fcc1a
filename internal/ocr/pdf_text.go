package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText reads the text layer of a PDF with github.com/ledongthuc/pdf.
type PDFText struct {
	MaxPages int // 0 = no limit
}

// Pages returns each page's text with rows in reading order, words separated by spaces.
// Malformed documents are reported as errors; the parser's panics are recovered.
func (p PDFText) Pages(ctx context.Context, content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	if p.MaxPages > 0 && n > p.MaxPages {
		n = p.MaxPages
	}
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			if line := joinRow(row.Content); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages, nil
}

// joinRow concatenates the text runs of one row. Runs that touch are glued together;
// glyph-per-run PDFs would otherwise come out letter-spaced.
func joinRow(runs pdf.TextHorizontal) string {
	var b strings.Builder
	var prevEnd float64
	for i, t := range runs {
		if t.S == "" {
			continue
		}
		if i > 0 && b.Len() > 0 && (t.W == 0 || t.X-prevEnd > touchGap) {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// touchGap is the horizontal distance, in points, under which two runs belong to one word.
const touchGap = 1.0
