// Package svg renders a laid out parameter table as a standalone SVG
// document.
package svg

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/q939055502/jy-syzn/internal/layout"
	"github.com/q939055502/jy-syzn/internal/table"
)

// Text colours. Only the parameter name column of a regular parameter uses
// RegularFill.
const (
	RegularFill = "red"
	DefaultFill = "black"
)

const (
	fontFamily = "Arial"
	// headerBaselineRatio lifts header text to look centred on its baseline.
	headerBaselineRatio = 0.3
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Render draws rows with the geometry in r. The background stays
// transparent.
func Render(rows []table.CleanedRow, r *layout.Result) string {
	p := r.Profile
	width := p.CanvasWidth
	height := r.TotalHeight()

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`+"\n",
		width, height, width, height)

	rect(&buf, p.Margin, p.Margin, p.ContentWidth(), height-2*p.Margin)

	writeHeader(&buf, r)
	writeBody(&buf, rows, r)

	buf.WriteString("</svg>")
	return buf.String()
}

func writeHeader(buf *bytes.Buffer, r *layout.Result) {
	p := r.Profile
	y := p.Margin
	baseline := float64(y+p.HeaderHeight/2) + float64(p.HeaderFontSize)*headerBaselineRatio
	for col, label := range table.Headers {
		x := r.ColumnX(col)
		w := r.Widths[col]
		rect(buf, x, y, w, p.HeaderHeight)
		fmt.Fprintf(buf, `    <text x="%d" y="%s" font-family="%s" font-size="%d" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`+"\n",
			x+w/2, num(baseline), fontFamily, p.HeaderFontSize, DefaultFill, escapeXML(label))
	}
}

func writeBody(buf *bytes.Buffer, rows []table.CleanedRow, r *layout.Result) {
	p := r.Profile
	cells := r.Cells()
	for _, c := range cells {
		rect(buf, c.X, c.Y, c.Width, c.Height)
	}
	for _, c := range cells {
		fill := DefaultFill
		if c.Col == table.ColParamName && rows[c.Row].Regular {
			fill = RegularFill
		}
		for i, y := range c.Baselines(p.LineHeight()) {
			fmt.Fprintf(buf, `    <text x="%d" y="%s" font-family="%s" font-size="%d" fill="%s" text-anchor="middle" xml:space="preserve">%s</text>`+"\n",
				c.CenterX(), num(y), fontFamily, p.BodyFontSize, fill, escapeXML(c.Lines[i]))
		}
	}
}

func rect(buf *bytes.Buffer, x, y, w, h int) {
	fmt.Fprintf(buf, `    <rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="black" stroke-width="1"/>`+"\n",
		x, y, w, h)
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
