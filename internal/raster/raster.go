// Package raster draws a laid out parameter table into a PNG image. It uses
// exactly the geometry of the layout result, so only glyph rasterization can
// differ from the vector rendering.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/q939055502/jy-syzn/internal/layout"
	"github.com/q939055502/jy-syzn/internal/table"
)

// ErrEncode wraps PNG encoding failures.
var ErrEncode = errors.New("PNG encoding failed")

// Colours shared with the vector renderer.
var (
	RegularColor = color.RGBA{R: 255, A: 255}
	DefaultColor = color.RGBA{A: 255}
	Background   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// headerBaselineRatio matches the vector header placement.
const headerBaselineRatio = 0.3

// Watermark configures the optional tiled raster watermark.
type Watermark struct {
	Text     string
	FontSize float64
	Color    color.NRGBA
	Angle    float64 // degrees, clockwise on screen
	Spacing  int
}

// DefaultWatermark returns the standard raster watermark.
func DefaultWatermark() *Watermark {
	return &Watermark{
		Text:     "我是水印",
		FontSize: 16,
		Color:    color.NRGBA{R: 96, G: 96, B: 96, A: 80},
		Angle:    30,
		Spacing:  150,
	}
}

// Option configures a render.
type Option func(*renderer)

// WithWatermark tiles w over the finished table. A nil w disables it.
func WithWatermark(w *Watermark) Option {
	return func(r *renderer) {
		r.watermark = w
	}
}

type renderer struct {
	img       *image.RGBA
	src       *FontSource
	watermark *Watermark
}

// Render draws rows with the geometry in lr and returns PNG bytes. A nil
// src uses the built-in fonts.
func Render(rows []table.CleanedRow, lr *layout.Result, src *FontSource, opts ...Option) ([]byte, error) {
	img, err := Draw(rows, lr, src, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Draw renders into an in-memory image without encoding it.
func Draw(rows []table.CleanedRow, lr *layout.Result, src *FontSource, opts ...Option) (*image.RGBA, error) {
	if len(rows) != lr.NumRows() {
		return nil, fmt.Errorf("raster: %d rows for a layout of %d", len(rows), lr.NumRows())
	}
	if src == nil {
		src = NewBuiltinFontSource()
	}

	p := lr.Profile
	r := &renderer{
		img: image.NewRGBA(image.Rect(0, 0, p.CanvasWidth, lr.TotalHeight())),
		src: src,
	}
	for _, opt := range opts {
		opt(r)
	}

	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	r.strokeRect(p.Margin, p.Margin, p.ContentWidth(), lr.TotalHeight()-2*p.Margin)
	r.drawHeader(lr)
	r.drawBody(rows, lr)
	if r.watermark != nil {
		r.drawWatermark()
	}
	return r.img, nil
}

func (r *renderer) drawHeader(lr *layout.Result) {
	p := lr.Profile
	face := r.src.Face(float64(p.HeaderFontSize))
	defer closeFace(face)

	y := p.Margin
	baseline := float64(y+p.HeaderHeight/2) + float64(p.HeaderFontSize)*headerBaselineRatio
	for col, label := range table.Headers {
		x := lr.ColumnX(col)
		w := lr.Widths[col]
		r.strokeRect(x, y, w, p.HeaderHeight)
		// faux bold: a second pass one pixel to the right
		r.drawCentered(face, label, x+w/2, baseline, DefaultColor)
		r.drawCentered(face, label, x+w/2+1, baseline, DefaultColor)
	}
}

func (r *renderer) drawBody(rows []table.CleanedRow, lr *layout.Result) {
	p := lr.Profile
	face := r.src.Face(float64(p.BodyFontSize))
	defer closeFace(face)

	cells := lr.Cells()
	for _, c := range cells {
		r.strokeRect(c.X, c.Y, c.Width, c.Height)
	}
	for _, c := range cells {
		clr := DefaultColor
		if c.Col == table.ColParamName && rows[c.Row].Regular {
			clr = RegularColor
		}
		for i, y := range c.Baselines(p.LineHeight()) {
			r.drawCentered(face, c.Lines[i], c.CenterX(), y, clr)
		}
	}
}

func (r *renderer) drawCentered(face font.Face, text string, cx int, baseline float64, c color.Color) {
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(cx - width/2),
			Y: fixed.Int26_6(math.Round(baseline * 64)),
		},
	}
	d.DrawString(text)
}

// strokeRect draws a 1px outline whose far edges land on x+w and y+h.
func (r *renderer) strokeRect(x, y, w, h int) {
	for i := x; i <= x+w; i++ {
		r.img.Set(i, y, DefaultColor)
		r.img.Set(i, y+h, DefaultColor)
	}
	for j := y; j <= y+h; j++ {
		r.img.Set(x, j, DefaultColor)
		r.img.Set(x+w, j, DefaultColor)
	}
}

// drawWatermark renders the text once into a square tile and composites a
// rotated copy centred on every grid point.
func (r *renderer) drawWatermark() {
	wm := r.watermark
	if wm.Text == "" || wm.Spacing <= 0 {
		return
	}
	face := r.src.Face(wm.FontSize)
	defer closeFace(face)

	tw := font.MeasureString(face, wm.Text).Ceil()
	m := face.Metrics()
	th := (m.Ascent + m.Descent).Ceil()
	side := int(math.Ceil(math.Hypot(float64(tw), float64(th))))
	if side <= 0 {
		return
	}

	tile := image.NewRGBA(image.Rect(0, 0, side, side))
	d := &font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(wm.Color),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((side - tw) / 2),
			Y: fixed.I((side-th)/2) + m.Ascent,
		},
	}
	d.DrawString(wm.Text)

	theta := wm.Angle * math.Pi / 180
	sin, cos := math.Sincos(theta)
	half := float64(side) / 2
	bounds := r.img.Bounds()
	for y := 0; y < bounds.Dy()+wm.Spacing; y += wm.Spacing {
		for x := 0; x < bounds.Dx()+wm.Spacing; x += wm.Spacing {
			// rotate about the tile centre, then move it to (x, y)
			s2d := f64.Aff3{
				cos, -sin, float64(x) - (cos*half - sin*half),
				sin, cos, float64(y) - (sin*half + cos*half),
			}
			draw.BiLinear.Transform(r.img, s2d, tile, tile.Bounds(), draw.Over, nil)
		}
	}
}

func closeFace(f font.Face) {
	_ = f.Close()
}
