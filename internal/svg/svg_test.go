package svg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/q939055502/jy-syzn/internal/layout"
	"github.com/q939055502/jy-syzn/internal/table"
)

func render(t *testing.T, raw []table.Row, p layout.Profile) (string, *layout.Result) {
	t.Helper()
	rows := table.Clean(raw)
	r := layout.Compute(rows, p)
	return Render(rows, r), r
}

type element struct {
	Name  string
	Attrs map[string]string
	Text  string
}

// parse walks the document with encoding/xml and fails on malformed markup.
func parse(t *testing.T, doc string) []element {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	var out []element
	var cur *element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("malformed SVG: %v", err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			e := element{Name: tk.Name.Local, Attrs: map[string]string{}}
			for _, a := range tk.Attr {
				e.Attrs[a.Name.Local] = a.Value
			}
			out = append(out, e)
			cur = &out[len(out)-1]
		case xml.CharData:
			if cur != nil {
				cur.Text += string(tk)
			}
		case xml.EndElement:
			cur = nil
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// TestRender - Document structure
// ---------------------------------------------------------------------------

func TestRender_Structure(t *testing.T) {
	t.Parallel()

	raw := []table.Row{
		{Cells: [table.NumColumns]string{"凝结时间(30)", "每批", "1次", "2kg", "密封", "厂家", "GB 175", "5天\n委托单A"}},
	}
	doc, r := render(t, raw, layout.Desktop)

	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("missing XML declaration")
	}
	if !strings.HasSuffix(doc, "</svg>") {
		t.Error("document must end with </svg>")
	}

	els := parse(t, doc)
	root := els[0]
	if root.Name != "svg" {
		t.Fatalf("root = %q, want svg", root.Name)
	}
	if got, want := root.Attrs["width"], "1200"; got != want {
		t.Errorf("width = %q, want %q", got, want)
	}
	if got, want := root.Attrs["height"], fmt.Sprint(r.TotalHeight()); got != want {
		t.Errorf("height = %q, want %q", got, want)
	}

	var labels []string
	for _, e := range els {
		if e.Name == "text" && e.Attrs["font-weight"] == "bold" {
			labels = append(labels, e.Text)
		}
	}
	if strings.Join(labels, ",") != strings.Join(table.Headers[:], ",") {
		t.Errorf("header labels = %v", labels)
	}

	// outer border + 8 header cells + 8 body cells
	rects := 0
	for _, e := range els {
		if e.Name == "rect" {
			rects++
		}
	}
	if rects != 1+2*table.NumColumns {
		t.Errorf("rect count = %d, want %d", rects, 1+2*table.NumColumns)
	}
}

func TestRender_RegularColour(t *testing.T) {
	t.Parallel()

	raw := []table.Row{
		{Cells: [table.NumColumns]string{"regular(1)", "a"}, Regular: true},
		{Cells: [table.NumColumns]string{"irregular(2)", "b"}, Regular: false},
	}
	doc, _ := render(t, raw, layout.Tablet)

	tests := []struct {
		text string
		want string
	}{
		{"regular(1)", RegularFill},
		{"irregular(2)", DefaultFill},
		{"a", DefaultFill},
	}
	els := parse(t, doc)
	for _, tt := range tests {
		found := false
		for _, e := range els {
			if e.Name == "text" && e.Text == tt.text {
				found = true
				if e.Attrs["fill"] != tt.want {
					t.Errorf("fill of %q = %q, want %q", tt.text, e.Attrs["fill"], tt.want)
				}
			}
		}
		if !found {
			t.Errorf("text %q not rendered", tt.text)
		}
	}
}

func TestRender_SpannedStandardsDrawnOnce(t *testing.T) {
	t.Parallel()

	raw := []table.Row{
		{Cells: [table.NumColumns]string{"a(1)", "b1", "f1", "s1", "i1", "r1", "GB 175", "t1"}},
		{Cells: [table.NumColumns]string{"b(2)", "b2", "f2", "s2", "i2", "r2", "GB 175", "t2"}},
		{Cells: [table.NumColumns]string{"c(3)", "b3", "f3", "s3", "i3", "r3", "GB 175", "t3"}},
	}
	doc, r := render(t, raw, layout.Desktop)

	x := fmt.Sprint(r.ColumnX(table.ColStandards))
	total := r.RowHeights[0] + r.RowHeights[1] + r.RowHeights[2]

	var bodyRects []element
	standardsTexts := 0
	for _, e := range parse(t, doc) {
		if e.Name == "rect" && e.Attrs["x"] == x && e.Attrs["y"] != fmt.Sprint(layout.Desktop.Margin) {
			bodyRects = append(bodyRects, e)
		}
		if e.Name == "text" && e.Text == "GB 175" {
			standardsTexts++
		}
	}
	if len(bodyRects) != 1 {
		t.Fatalf("standards body rects = %d, want 1", len(bodyRects))
	}
	if got := bodyRects[0].Attrs["height"]; got != fmt.Sprint(total) {
		t.Errorf("standards rect height = %s, want %d", got, total)
	}
	if standardsTexts != 1 {
		t.Errorf("standards text drawn %d times, want 1", standardsTexts)
	}
}

func TestRender_EscapesText(t *testing.T) {
	t.Parallel()

	raw := []table.Row{
		{Cells: [table.NumColumns]string{`<b>&"x"(1)`}},
	}
	doc, _ := render(t, raw, layout.Desktop)

	if strings.Contains(doc, "<b>") {
		t.Error("raw markup leaked into the document")
	}
	found := false
	for _, e := range parse(t, doc) {
		if e.Name == "text" && strings.Contains(e.Text, `<b>&"x"`) {
			found = true
		}
	}
	if !found {
		t.Error("escaped text did not round-trip through the XML decoder")
	}
}

func TestRender_KeepsCellSpacing(t *testing.T) {
	t.Parallel()

	raw := []table.Row{
		{Cells: [table.NumColumns]string{"  a  b"}},
	}
	doc, _ := render(t, raw, layout.Desktop)

	found := false
	for _, e := range parse(t, doc) {
		if e.Name == "text" && e.Text == "  a  b" {
			found = true
			if e.Attrs["space"] != "preserve" {
				t.Errorf("cell text xml:space = %q, want preserve", e.Attrs["space"])
			}
		}
	}
	if !found {
		t.Error("cell text lost its whitespace runs")
	}
}

func TestNum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{117, "117"},
		{117.00000000000001, "117"},
		{26.8, "26.8"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
