// Package layout computes the renderer-agnostic geometry of the parameter
// table: reconciled column widths, wrapped cell text, vertical merge spans and
// row heights. Both renderers draw from the same Result so their layout
// decisions cannot diverge.
package layout

import (
	"math"
	"slices"
	"strings"

	"github.com/q939055502/jy-syzn/internal/table"
	"github.com/q939055502/jy-syzn/internal/textmetrics"
)

// MaxRelaxPasses caps the span relaxation loop.
const MaxRelaxPasses = 10

// baselineRatio places a text baseline inside its line box.
const baselineRatio = 0.7

// ceilEpsilon keeps float noise such as 12.000000000000002 from rounding up.
const ceilEpsilon = 1e-9

// MergeSpan is an inclusive run of rows collapsed into one cell of Column.
type MergeSpan struct {
	Start  int
	End    int
	Column int
}

// Rows returns the number of rows the span covers.
func (s MergeSpan) Rows() int {
	return s.End - s.Start + 1
}

// Contains reports whether row lies inside the span.
func (s MergeSpan) Contains(row int) bool {
	return row >= s.Start && row <= s.End
}

// Result is the layout of one table at one profile.
type Result struct {
	Profile    Profile
	Widths     [table.NumColumns]int
	RowHeights []int
	Spans      []MergeSpan

	// Lines holds the drawable wrapped lines of every cell. Blank lines are
	// dropped.
	Lines [][table.NumColumns][]string

	spanStart [][table.NumColumns]int // index+1 into Spans, 0 when none
	covered   [][table.NumColumns]bool
}

// Cell is one drawable cell rectangle with its text.
type Cell struct {
	Row    int
	Col    int
	X      int
	Y      int
	Width  int
	Height int
	Lines  []string
}

// Baselines returns the y coordinate of every line when the text block is
// centred vertically in the cell.
func (c Cell) Baselines(lineHeight float64) []float64 {
	n := max(1, len(c.Lines))
	top := float64(c.Y) + (float64(c.Height)-float64(n)*lineHeight)/2
	out := make([]float64, len(c.Lines))
	for i := range c.Lines {
		out[i] = top + lineHeight*(float64(i)+baselineRatio)
	}
	return out
}

// CenterX is the horizontal centre of the cell.
func (c Cell) CenterX() int {
	return c.X + c.Width/2
}

// Compute lays out cleaned rows for profile p.
func Compute(rows []table.CleanedRow, p Profile) *Result {
	r := &Result{
		Profile: p,
		Widths:  p.Widths(),
	}
	n := len(rows)
	r.Spans = DetectSpans(rows)
	r.index(n)

	required := make([][table.NumColumns]int, n)
	r.Lines = make([][table.NumColumns][]string, n)
	for i, row := range rows {
		for col, text := range row.Cells {
			avail := textmetrics.AvailableWidth(r.Widths[col], p.TextMargin)
			lines := drawable(textmetrics.Wrap(text, avail, p.BodyFontSize))
			r.Lines[i][col] = lines
			required[i][col] = CellHeight(len(lines), p)
		}
	}

	r.RowHeights = make([]int, n)
	for i := range rows {
		h := 0
		for col := range table.NumColumns {
			if r.covered[i][col] {
				continue
			}
			h = max(h, required[i][col])
		}
		if h == 0 {
			h = int(math.Ceil(p.LineHeight()-ceilEpsilon)) + 2
		}
		r.RowHeights[i] = h
	}

	relax(r.RowHeights, r.Spans, required)

	for i, h := range r.RowHeights {
		r.RowHeights[i] = max(h, p.MinRowHeight)
	}
	return r
}

// CellHeight returns the height a cell needs to show lineCount non-empty
// lines. A cell always reserves at least one line.
func CellHeight(lineCount int, p Profile) int {
	h := p.LineHeight()*float64(max(1, lineCount)) + 2*float64(p.TextMargin)
	return int(math.Ceil(h - ceilEpsilon))
}

// DetectSpans finds the vertical merge spans of every mergeable column. An
// empty cell below row 0 extends the span that starts at the row above it.
// Spans come out ordered by column, then by start row.
func DetectSpans(rows []table.CleanedRow) []MergeSpan {
	var spans []MergeSpan
	for col := range table.NumColumns {
		if !table.Mergeable(col) {
			continue
		}
		open := -1
		for i := 1; i < len(rows); i++ {
			if rows[i].Cells[col] == "" {
				if open < 0 {
					open = i - 1
				}
				continue
			}
			if open >= 0 {
				spans = append(spans, MergeSpan{Start: open, End: i - 1, Column: col})
				open = -1
			}
		}
		if open >= 0 {
			spans = append(spans, MergeSpan{Start: open, End: len(rows) - 1, Column: col})
		}
	}
	return spans
}

// relax grows spanned rows until every span is at least as tall as the cell
// at its start row. A shortfall is split evenly; the remainder goes to the
// earliest rows one pixel at a time. Heights only grow, so the loop settles
// on the first pass that changes nothing.
func relax(heights []int, spans []MergeSpan, required [][table.NumColumns]int) {
	for range MaxRelaxPasses {
		adjusted := false
		for _, s := range spans {
			need := required[s.Start][s.Column]
			have := 0
			for i := s.Start; i <= s.End; i++ {
				have += heights[i]
			}
			deficit := need - have
			if deficit <= 0 {
				continue
			}
			per, rem := deficit/s.Rows(), deficit%s.Rows()
			for k := range s.Rows() {
				add := per
				if k < rem {
					add++
				}
				heights[s.Start+k] += add
			}
			adjusted = true
		}
		if !adjusted {
			return
		}
	}
}

func drawable(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func (r *Result) index(n int) {
	r.spanStart = make([][table.NumColumns]int, n)
	r.covered = make([][table.NumColumns]bool, n)
	for k, s := range r.Spans {
		r.spanStart[s.Start][s.Column] = k + 1
		for i := s.Start + 1; i <= s.End; i++ {
			r.covered[i][s.Column] = true
		}
	}
}

// NumRows returns the number of laid out rows.
func (r *Result) NumRows() int {
	return len(r.RowHeights)
}

// SpanAt returns the span that starts at (row, col).
func (r *Result) SpanAt(row, col int) (MergeSpan, bool) {
	if row < 0 || row >= len(r.spanStart) || col < 0 || col >= table.NumColumns {
		return MergeSpan{}, false
	}
	k := r.spanStart[row][col]
	if k == 0 {
		return MergeSpan{}, false
	}
	return r.Spans[k-1], true
}

// Covered reports whether (row, col) continues a span started above it and
// therefore draws nothing of its own.
func (r *Result) Covered(row, col int) bool {
	if row < 0 || row >= len(r.covered) || col < 0 || col >= table.NumColumns {
		return false
	}
	return r.covered[row][col]
}

// CellHeight returns the drawn height of the cell at (row, col): the summed
// span height at a span start, the row height otherwise.
func (r *Result) CellHeight(row, col int) int {
	if s, ok := r.SpanAt(row, col); ok {
		h := 0
		for i := s.Start; i <= s.End; i++ {
			h += r.RowHeights[i]
		}
		return h
	}
	return r.RowHeights[row]
}

// ColumnX returns the left edge of column col.
func (r *Result) ColumnX(col int) int {
	x := r.Profile.Margin
	for c := 0; c < col; c++ {
		x += r.Widths[c]
	}
	return x
}

// BodyTop is the y coordinate of the first data row.
func (r *Result) BodyTop() int {
	return r.Profile.Margin + r.Profile.HeaderHeight
}

// RowY returns the top edge of data row row.
func (r *Result) RowY(row int) int {
	y := r.BodyTop()
	for i := 0; i < row; i++ {
		y += r.RowHeights[i]
	}
	return y
}

// TotalHeight is the canvas height: both margins, the header and every row.
func (r *Result) TotalHeight() int {
	h := 2*r.Profile.Margin + r.Profile.HeaderHeight
	for _, rh := range r.RowHeights {
		h += rh
	}
	return h
}

// Cells lists the cells to draw in row-major order, skipping covered cells.
func (r *Result) Cells() []Cell {
	cells := make([]Cell, 0, r.NumRows()*table.NumColumns)
	y := r.BodyTop()
	for row, rh := range r.RowHeights {
		for col := range table.NumColumns {
			if r.covered[row][col] {
				continue
			}
			cells = append(cells, Cell{
				Row:    row,
				Col:    col,
				X:      r.ColumnX(col),
				Y:      y,
				Width:  r.Widths[col],
				Height: r.CellHeight(row, col),
				Lines:  r.Lines[row][col],
			})
		}
		y += rh
	}
	return cells
}

// SameGeometry reports whether two results agree on row heights, spans and
// column widths.
func (r *Result) SameGeometry(other *Result) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Widths == other.Widths &&
		slices.Equal(r.RowHeights, other.RowHeights) &&
		slices.Equal(r.Spans, other.Spans)
}
