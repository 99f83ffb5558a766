// Package watermark post-processes a finished SVG document. It adds a tiled
// text watermark and an anti-scraping layer of noise, a faint grid, decoy
// shapes, a hidden signature and a filler comment. Nothing here touches the
// table markup itself; new elements are inserted before the closing tag.
package watermark

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel errors.
var (
	ErrInvalidText       = errors.New("invalid watermark")
	ErrInvalidAntiScrape = errors.New("invalid anti-scrape options")
)

// Text watermark defaults.
const (
	DefaultText              = "我是水印"
	DefaultColor             = "#888888"
	DefaultOpacity           = 0.3
	DefaultRotation          = 30
	DefaultFontSize          = 14
	DefaultHorizontalSpacing = 100
	DefaultVerticalSpacing   = 80
	DefaultFontFamily        = "Arial"
)

// DefaultHeight is assumed when a document declares no usable size.
const DefaultHeight = 1000

const closingTag = "</svg>"

var (
	hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rootTag         = regexp.MustCompile(`<svg\b[^>]*>`)
	widthAttr       = regexp.MustCompile(`\swidth="(\d+)"`)
	heightAttr      = regexp.MustCompile(`\sheight="(\d+)"`)
	viewBoxAttr     = regexp.MustCompile(`\sviewBox="0 0 (\d+) (\d+)"`)
)

// TextOptions configures the tiled text watermark.
type TextOptions struct {
	Text              string
	Color             string  // hex, "#rgb" or "#rrggbb"
	Opacity           float64 // 0..1
	Rotation          float64 // degrees
	FontSize          int
	HorizontalSpacing int
	VerticalSpacing   int
	FontFamily        string
}

// DefaultTextOptions returns the standard watermark.
func DefaultTextOptions() *TextOptions {
	return &TextOptions{
		Text:              DefaultText,
		Color:             DefaultColor,
		Opacity:           DefaultOpacity,
		Rotation:          DefaultRotation,
		FontSize:          DefaultFontSize,
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		FontFamily:        DefaultFontFamily,
	}
}

// Validate checks the watermark settings.
// Returns nil if o is nil (nil means no watermark).
func (o *TextOptions) Validate() error {
	if o == nil {
		return nil
	}
	if strings.TrimSpace(o.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidText)
	}
	if o.Color != "" && !hexColorPattern.MatchString(o.Color) {
		return fmt.Errorf("%w: color %q (expected #rgb or #rrggbb)", ErrInvalidText, o.Color)
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		return fmt.Errorf("%w: opacity %.2f (must be between 0 and 1)", ErrInvalidText, o.Opacity)
	}
	if o.FontSize <= 0 {
		return fmt.Errorf("%w: font size %d", ErrInvalidText, o.FontSize)
	}
	if o.HorizontalSpacing <= 0 || o.VerticalSpacing <= 0 {
		return fmt.Errorf("%w: spacing %dx%d", ErrInvalidText, o.HorizontalSpacing, o.VerticalSpacing)
	}
	return nil
}

// Apply tiles the watermark text across the whole canvas. Tiling starts one
// spacing step outside the top-left corner so the edges are covered too.
func Apply(doc string, o *TextOptions, fallbackWidth int) (string, error) {
	if o == nil {
		return doc, nil
	}
	if err := o.Validate(); err != nil {
		return "", err
	}

	width, height := Dimensions(doc, fallbackWidth)
	color := o.Color
	if color == "" {
		color = DefaultColor
	}
	family := o.FontFamily
	if family == "" {
		family = DefaultFontFamily
	}

	hs, vs := o.HorizontalSpacing, o.VerticalSpacing
	cols := width/hs + 2
	rows := height/vs + 2
	text := escapeXML(o.Text)
	rotation := strconv.FormatFloat(o.Rotation, 'f', -1, 64)
	opacity := strconv.FormatFloat(o.Opacity, 'f', -1, 64)

	var b strings.Builder
	for i := range rows {
		for j := range cols {
			x := -hs + j*hs
			y := -vs + i*vs
			fmt.Fprintf(&b, `    <text x="%d" y="%d" font-family="%s" font-size="%d" fill="%s" opacity="%s" transform="rotate(%s, %d, %d)" text-anchor="middle" pointer-events="none">%s</text>`+"\n",
				x, y, escapeXML(family), o.FontSize, color, opacity, rotation, x, y, text)
		}
	}
	return insert(doc, b.String()), nil
}

// Dimensions reads the canvas size from the root width and height
// attributes, then from a "0 0 w h" viewBox. Without either it returns
// fallbackWidth by DefaultHeight.
func Dimensions(doc string, fallbackWidth int) (width, height int) {
	root := rootTag.FindString(doc)
	wm := widthAttr.FindStringSubmatch(root)
	hm := heightAttr.FindStringSubmatch(root)
	if wm != nil && hm != nil {
		w, werr := strconv.Atoi(wm[1])
		h, herr := strconv.Atoi(hm[1])
		if werr == nil && herr == nil {
			return w, h
		}
	}
	if vb := viewBoxAttr.FindStringSubmatch(root); vb != nil {
		w, werr := strconv.Atoi(vb[1])
		h, herr := strconv.Atoi(vb[2])
		if werr == nil && herr == nil {
			return w, h
		}
	}
	return fallbackWidth, DefaultHeight
}

// insert places markup before the last closing tag. A document without one
// gets the markup and a closing tag appended.
func insert(doc, markup string) string {
	i := strings.LastIndex(doc, closingTag)
	if i < 0 {
		return doc + "\n" + markup + closingTag
	}
	var b strings.Builder
	b.Grow(len(doc) + len(markup) + 1)
	b.WriteString(strings.TrimRight(doc[:i], "\n"))
	b.WriteString("\n")
	b.WriteString(markup)
	b.WriteString(doc[i:])
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
