package paramtable

import (
	"cmp"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/q939055502/jy-syzn/internal/layout"
	"github.com/q939055502/jy-syzn/internal/raster"
	"github.com/q939055502/jy-syzn/internal/table"
	"github.com/q939055502/jy-syzn/internal/watermark"
)

// ParameterRecord is one detection parameter of an inspection item.
// Values equal to "null" or "None" are treated as empty.
type ParameterRecord struct {
	ParamName         string `yaml:"param_name" json:"param_name"`
	Price             string `yaml:"price" json:"price"`
	SamplingBatch     string `yaml:"sampling_batch" json:"sampling_batch"`
	SamplingFrequency string `yaml:"sampling_frequency" json:"sampling_frequency"`
	SamplingRequire   string `yaml:"sampling_require" json:"sampling_require"`
	InspectionRequire string `yaml:"inspection_require" json:"inspection_require"`
	RequiredInfo      string `yaml:"required_info" json:"required_info"`
	Standards         string `yaml:"standards" json:"standards"` // see JoinStandards
	TemplateCode      string `yaml:"template_code" json:"template_code"`
	ReportTime        string `yaml:"report_time" json:"report_time"`
	IsRegularParam    int    `yaml:"is_regular_param" json:"is_regular_param"` // 1 renders the name in red
	SortOrder         int    `yaml:"sort_order" json:"sort_order"`
}

// Standard is one inspection standard referenced by a parameter.
type Standard struct {
	Name string `yaml:"standard_name" json:"standard_name"`
	Code string `yaml:"standard_code" json:"standard_code"`
}

// JoinStandards formats standards for ParameterRecord.Standards: "name\ncode"
// per standard, standards separated by "\n". A standard with only a name or
// only a code contributes that value; one with neither is skipped.
func JoinStandards(standards []Standard) string {
	parts := make([]string, 0, len(standards))
	for _, s := range standards {
		switch {
		case s.Name != "" && s.Code != "":
			parts = append(parts, s.Name+"\n"+s.Code)
		case s.Name != "":
			parts = append(parts, s.Name)
		case s.Code != "":
			parts = append(parts, s.Code)
		}
	}
	return strings.Join(parts, "\n")
}

// SortRecords returns a copy of records with regular parameters first, then
// ascending SortOrder. Equal keys keep their input order. The renderer never
// sorts on its own; call this before rendering when the source is unordered.
func SortRecords(records []ParameterRecord) []ParameterRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b ParameterRecord) int {
		if c := cmp.Compare(b.IsRegularParam, a.IsRegularParam); c != 0 {
			return c
		}
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})
	return sorted
}

// CacheKey returns the key under which callers conventionally cache the
// artifacts of an item: "data_img:{itemID}:{device}".
func CacheKey(itemID string, d Device) string {
	return fmt.Sprintf("data_img:%s:%s", itemID, d)
}

// ArtifactKind identifies the format of an Artifact.
type ArtifactKind int

// Artifact kinds.
const (
	KindVector ArtifactKind = iota
	KindRaster
	KindSnapshot
)

// String returns the kind name.
func (k ArtifactKind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindRaster:
		return "raster"
	case KindSnapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("ArtifactKind(%d)", int(k))
	}
}

// Extension returns the file extension without the dot.
func (k ArtifactKind) Extension() string {
	if k == KindVector {
		return "svg"
	}
	return "png"
}

// MediaType returns the MIME type of the artifact bytes.
func (k ArtifactKind) MediaType() string {
	if k == KindVector {
		return "image/svg+xml"
	}
	return "image/png"
}

// Artifact is one rendered output. The renderer does not cache artifacts.
type Artifact struct {
	Device Device
	Kind   ArtifactKind
	Data   []byte
}

// Span is a vertical merge of rows Start..End (inclusive) in one column.
type Span struct {
	Column int
	Start  int
	End    int
}

// Layout describes the computed table geometry.
type Layout struct {
	Width      int
	Height     int
	RowHeights []int
	Spans      []Span
}

// Result is the output of one device render.
type Result struct {
	Device   Device
	Vector   Artifact  // watermarked SVG document
	Raster   Artifact  // PNG bitmap
	Snapshot *Artifact // browser-rendered PNG of Vector, nil unless enabled
	Layout   Layout
}

// Artifacts returns every artifact in the result.
func (r *Result) Artifacts() []Artifact {
	out := []Artifact{r.Vector, r.Raster}
	if r.Snapshot != nil {
		out = append(out, *r.Snapshot)
	}
	return out
}

// Watermark configures the tiled text watermark of the vector output.
type Watermark struct {
	Text              string
	Color             string  // hex, "#rgb" or "#rrggbb"
	Opacity           float64 // 0.0 to 1.0
	Rotation          float64 // degrees
	FontSize          int
	HorizontalSpacing int
	VerticalSpacing   int
	FontFamily        string
}

// DefaultWatermark returns the standard vector watermark.
func DefaultWatermark() *Watermark {
	o := watermark.DefaultTextOptions()
	return &Watermark{
		Text:              o.Text,
		Color:             o.Color,
		Opacity:           o.Opacity,
		Rotation:          o.Rotation,
		FontSize:          o.FontSize,
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
		FontFamily:        o.FontFamily,
	}
}

// Validate checks the watermark settings.
// Returns nil if w is nil (nil means no watermark).
func (w *Watermark) Validate() error {
	return toTextOptions(w).Validate()
}

// AntiScrape configures the obfuscation layer of the vector output.
type AntiScrape struct {
	NoiseDensity  float64 // noise primitives per square pixel
	NoiseOpacity  float64 // centre of the noise opacity band
	Grid          bool
	GridOpacity   float64
	GridSpacing   int
	Decoys        bool
	DecoyCount    int
	Signature     bool
	SignatureText string
	CommentLength int
	Seed          uint64 // 0 draws a fresh seed per render
}

// DefaultAntiScrape returns the standard obfuscation layer.
func DefaultAntiScrape() *AntiScrape {
	o := watermark.DefaultAntiScrapeOptions()
	return &AntiScrape{
		NoiseDensity:  o.NoiseDensity,
		NoiseOpacity:  o.NoiseOpacity,
		Grid:          o.Grid,
		GridOpacity:   o.GridOpacity,
		GridSpacing:   o.GridSpacing,
		Decoys:        o.Decoys,
		DecoyCount:    o.DecoyCount,
		Signature:     o.Signature,
		SignatureText: o.SignatureText,
		CommentLength: o.CommentLength,
	}
}

// Validate checks the anti-scrape settings.
// Returns nil if a is nil (nil means no anti-scrape layer).
func (a *AntiScrape) Validate() error {
	return toAntiScrapeOptions(a).Validate()
}

// RasterWatermark configures the optional tiled watermark of the raster
// output.
type RasterWatermark struct {
	Text     string
	FontSize float64
	Color    color.NRGBA
	Angle    float64 // degrees
	Spacing  int     // pixels between tile centres
}

// DefaultRasterWatermark returns the standard raster watermark.
func DefaultRasterWatermark() *RasterWatermark {
	w := raster.DefaultWatermark()
	return &RasterWatermark{
		Text:     w.Text,
		FontSize: w.FontSize,
		Color:    w.Color,
		Angle:    w.Angle,
		Spacing:  w.Spacing,
	}
}

// Validate checks the raster watermark settings.
// Returns nil if w is nil (nil means no raster watermark).
func (w *RasterWatermark) Validate() error {
	if w == nil {
		return nil
	}
	if strings.TrimSpace(w.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidRasterWatermark)
	}
	if w.FontSize <= 0 {
		return fmt.Errorf("%w: font size %.1f", ErrInvalidRasterWatermark, w.FontSize)
	}
	if w.Spacing <= 0 {
		return fmt.Errorf("%w: spacing %d", ErrInvalidRasterWatermark, w.Spacing)
	}
	return nil
}

// toTableRecords converts public records to transformer input.
func toTableRecords(records []ParameterRecord) []table.Record {
	out := make([]table.Record, len(records))
	for i, r := range records {
		out[i] = table.Record{
			ParamName:         r.ParamName,
			Price:             r.Price,
			SamplingBatch:     r.SamplingBatch,
			SamplingFrequency: r.SamplingFrequency,
			SamplingRequire:   r.SamplingRequire,
			InspectionRequire: r.InspectionRequire,
			RequiredInfo:      r.RequiredInfo,
			Standards:         r.Standards,
			TemplateCode:      r.TemplateCode,
			ReportTime:        r.ReportTime,
			IsRegularParam:    r.IsRegularParam,
		}
	}
	return out
}

func toTextOptions(w *Watermark) *watermark.TextOptions {
	if w == nil {
		return nil
	}
	return &watermark.TextOptions{
		Text:              w.Text,
		Color:             w.Color,
		Opacity:           w.Opacity,
		Rotation:          w.Rotation,
		FontSize:          w.FontSize,
		HorizontalSpacing: w.HorizontalSpacing,
		VerticalSpacing:   w.VerticalSpacing,
		FontFamily:        w.FontFamily,
	}
}

func toAntiScrapeOptions(a *AntiScrape) *watermark.AntiScrapeOptions {
	if a == nil {
		return nil
	}
	return &watermark.AntiScrapeOptions{
		NoiseDensity:  a.NoiseDensity,
		NoiseOpacity:  a.NoiseOpacity,
		Grid:          a.Grid,
		GridOpacity:   a.GridOpacity,
		GridSpacing:   a.GridSpacing,
		Decoys:        a.Decoys,
		DecoyCount:    a.DecoyCount,
		Signature:     a.Signature,
		SignatureText: a.SignatureText,
		CommentLength: a.CommentLength,
		Seed:          a.Seed,
	}
}

func toRasterWatermark(w *RasterWatermark) *raster.Watermark {
	if w == nil {
		return nil
	}
	return &raster.Watermark{
		Text:     w.Text,
		FontSize: w.FontSize,
		Color:    w.Color,
		Angle:    w.Angle,
		Spacing:  w.Spacing,
	}
}

func toLayout(lr *layout.Result) Layout {
	spans := make([]Span, len(lr.Spans))
	for i, s := range lr.Spans {
		spans[i] = Span{Column: s.Column, Start: s.Start, End: s.End}
	}
	return Layout{
		Width:      lr.Profile.CanvasWidth,
		Height:     lr.TotalHeight(),
		RowHeights: slices.Clone(lr.RowHeights),
		Spans:      spans,
	}
}
