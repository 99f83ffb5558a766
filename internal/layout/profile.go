package layout

import "github.com/q939055502/jy-syzn/internal/table"

// Shared geometry, identical for every profile.
const (
	DefaultMargin       = 2
	DefaultHeaderHeight = 40
	DefaultLineSpacing  = 1.2
	DefaultTextMargin   = 1
)

// Profile bundles the canvas and typography constants of one device layout.
type Profile struct {
	Name           string
	CanvasWidth    int
	Margin         int
	ColumnWidths   [table.NumColumns]int
	BodyFontSize   int
	HeaderFontSize int
	HeaderHeight   int
	MinRowHeight   int
	LineSpacing    float64
	TextMargin     int
}

// Built-in profiles. The tablet minimum row height is taller than desktop on
// purpose.
var (
	Desktop = Profile{
		Name:           "desktop",
		CanvasWidth:    1200,
		Margin:         DefaultMargin,
		ColumnWidths:   [table.NumColumns]int{120, 130, 130, 130, 130, 150, 150, 130},
		BodyFontSize:   12,
		HeaderFontSize: 16,
		HeaderHeight:   DefaultHeaderHeight,
		MinRowHeight:   20,
		LineSpacing:    DefaultLineSpacing,
		TextMargin:     DefaultTextMargin,
	}

	Tablet = Profile{
		Name:           "tablet",
		CanvasWidth:    768,
		Margin:         DefaultMargin,
		ColumnWidths:   [table.NumColumns]int{80, 90, 90, 90, 90, 100, 100, 98},
		BodyFontSize:   10,
		HeaderFontSize: 14,
		HeaderHeight:   DefaultHeaderHeight,
		MinRowHeight:   30,
		LineSpacing:    DefaultLineSpacing,
		TextMargin:     DefaultTextMargin,
	}

	Phone = Profile{
		Name:           "phone",
		CanvasWidth:    375,
		Margin:         DefaultMargin,
		ColumnWidths:   [table.NumColumns]int{40, 45, 45, 45, 45, 50, 50, 55},
		BodyFontSize:   8,
		HeaderFontSize: 8,
		HeaderHeight:   DefaultHeaderHeight,
		MinRowHeight:   25,
		LineSpacing:    DefaultLineSpacing,
		TextMargin:     DefaultTextMargin,
	}
)

// ContentWidth is the table width inside the margins.
func (p Profile) ContentWidth() int {
	return p.CanvasWidth - 2*p.Margin
}

// Widths returns the column widths reconciled to ContentWidth. The last
// column absorbs the whole difference, growing on a deficit and shrinking on
// an excess, but never below one pixel.
func (p Profile) Widths() [table.NumColumns]int {
	widths := p.ColumnWidths
	sum := 0
	for _, w := range widths {
		sum += w
	}
	last := len(widths) - 1
	widths[last] += p.ContentWidth() - sum
	if widths[last] < 1 {
		widths[last] = 1
	}
	return widths
}

// LineHeight is the body line pitch in pixels.
func (p Profile) LineHeight() float64 {
	return float64(p.BodyFontSize) * p.LineSpacing
}
