package watermark

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Anti-scrape defaults.
const (
	DefaultNoiseDensity  = 0.01
	DefaultNoiseOpacity  = 0.1
	DefaultGridOpacity   = 0.05
	DefaultGridSpacing   = 50
	DefaultDecoyCount    = 5
	DefaultSignature     = "anti-crawl-protected"
	DefaultCommentLength = 100
)

const (
	decoyStrokeOpacity = 0.05
	signatureFontSize  = 3
	signatureOpacity   = 0.01
	fillerAlphabet     = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// AntiScrapeOptions configures the obfuscation layer.
type AntiScrapeOptions struct {
	NoiseDensity  float64 // primitives per square pixel
	NoiseOpacity  float64 // centre of the [0.5x, 1.5x] opacity band
	Grid          bool
	GridOpacity   float64
	GridSpacing   int
	Decoys        bool
	DecoyCount    int
	Signature     bool
	SignatureText string
	CommentLength int

	// Seed makes the output reproducible. Zero draws a random seed.
	Seed uint64
}

// DefaultAntiScrapeOptions enables every layer with the standard settings.
func DefaultAntiScrapeOptions() *AntiScrapeOptions {
	return &AntiScrapeOptions{
		NoiseDensity:  DefaultNoiseDensity,
		NoiseOpacity:  DefaultNoiseOpacity,
		Grid:          true,
		GridOpacity:   DefaultGridOpacity,
		GridSpacing:   DefaultGridSpacing,
		Decoys:        true,
		DecoyCount:    DefaultDecoyCount,
		Signature:     true,
		SignatureText: DefaultSignature,
		CommentLength: DefaultCommentLength,
	}
}

// Validate checks the anti-scrape settings.
// Returns nil if o is nil (nil means no anti-scrape layer).
func (o *AntiScrapeOptions) Validate() error {
	if o == nil {
		return nil
	}
	if o.NoiseDensity < 0 || o.NoiseDensity > 1 {
		return fmt.Errorf("%w: noise density %v (must be between 0 and 1)", ErrInvalidAntiScrape, o.NoiseDensity)
	}
	if o.NoiseOpacity < 0 || o.NoiseOpacity > 1 {
		return fmt.Errorf("%w: noise opacity %v (must be between 0 and 1)", ErrInvalidAntiScrape, o.NoiseOpacity)
	}
	if o.Grid {
		if o.GridSpacing <= 0 {
			return fmt.Errorf("%w: grid spacing %d", ErrInvalidAntiScrape, o.GridSpacing)
		}
		if o.GridOpacity < 0 || o.GridOpacity > 1 {
			return fmt.Errorf("%w: grid opacity %v (must be between 0 and 1)", ErrInvalidAntiScrape, o.GridOpacity)
		}
	}
	if o.DecoyCount < 0 {
		return fmt.Errorf("%w: decoy count %d", ErrInvalidAntiScrape, o.DecoyCount)
	}
	if o.CommentLength < 0 {
		return fmt.Errorf("%w: comment length %d", ErrInvalidAntiScrape, o.CommentLength)
	}
	return nil
}

// ApplyAntiScrape adds the obfuscation layer in a fixed order: noise, grid,
// decoys, signature, then the filler comment.
func ApplyAntiScrape(doc string, o *AntiScrapeOptions, fallbackWidth int) (string, error) {
	if o == nil {
		return doc, nil
	}
	if err := o.Validate(); err != nil {
		return "", err
	}

	width, height := Dimensions(doc, fallbackWidth)
	rng := newRand(o.Seed)

	var b strings.Builder
	writeNoise(&b, rng, width, height, o)
	if o.Grid {
		writeGrid(&b, width, height, o)
	}
	if o.Decoys {
		for range o.DecoyCount {
			writeDecoy(&b, rng, width, height)
		}
	}
	if o.Signature {
		text := o.SignatureText
		if text == "" {
			text = DefaultSignature
		}
		fmt.Fprintf(&b, `    <text x="%d" y="%d" font-family="%s" font-size="%d" fill="#000000" fill-opacity="%s" text-anchor="end">%s</text>`+"\n",
			width-50, height-5, DefaultFontFamily, signatureFontSize, num(signatureOpacity), escapeXML(text))
	}
	fmt.Fprintf(&b, "    <!-- %s -->\n", filler(rng, o.CommentLength))

	return insert(doc, b.String()), nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func writeNoise(b *strings.Builder, rng *rand.Rand, width, height int, o *AntiScrapeOptions) {
	count := int(float64(width) * float64(height) * o.NoiseDensity)
	for range count {
		x := rng.IntN(width + 1)
		y := rng.IntN(height + 1)
		size := uniform(rng, 0.5, 2)
		opacity := uniform(rng, o.NoiseOpacity*0.5, o.NoiseOpacity*1.5)
		if rng.Float64() < 0.5 {
			fmt.Fprintf(b, `    <circle cx="%d" cy="%d" r="%s" fill="#000000" fill-opacity="%s"/>`+"\n",
				x, y, num(size), num(opacity))
			continue
		}
		angle := uniform(rng, 0, 2*math.Pi)
		length := uniform(rng, 1, 3)
		x2 := float64(x) + length*math.Cos(angle)
		y2 := float64(y) + length*math.Sin(angle)
		fmt.Fprintf(b, `    <line x1="%d" y1="%d" x2="%s" y2="%s" stroke="#000000" stroke-opacity="%s" stroke-width="%s"/>`+"\n",
			x, y, num(x2), num(y2), num(opacity), num(size))
	}
}

func writeGrid(b *strings.Builder, width, height int, o *AntiScrapeOptions) {
	opacity := num(o.GridOpacity)
	for x := 0; x < width+o.GridSpacing; x += o.GridSpacing {
		fmt.Fprintf(b, `    <line x1="%d" y1="0" x2="%d" y2="%d" stroke="#000000" stroke-opacity="%s" stroke-width="0.5"/>`+"\n",
			x, x, height, opacity)
	}
	for y := 0; y < height+o.GridSpacing; y += o.GridSpacing {
		fmt.Fprintf(b, `    <line x1="0" y1="%d" x2="%d" y2="%d" stroke="#000000" stroke-opacity="%s" stroke-width="0.5"/>`+"\n",
			y, width, y, opacity)
	}
}

func writeDecoy(b *strings.Builder, rng *rand.Rand, width, height int) {
	x := rng.IntN(width + 1)
	y := rng.IntN(height + 1)
	stroke := fmt.Sprintf(`fill="none" stroke="#000000" stroke-opacity="%s" stroke-width="0.5"`, num(decoyStrokeOpacity))

	switch rng.IntN(4) {
	case 0:
		fmt.Fprintf(b, `    <rect x="%d" y="%d" width="%s" height="%s" %s/>`+"\n",
			x, y, num(uniform(rng, 10, 50)), num(uniform(rng, 10, 50)), stroke)
	case 1:
		fmt.Fprintf(b, `    <ellipse cx="%d" cy="%d" rx="%s" ry="%s" %s/>`+"\n",
			x, y, num(uniform(rng, 5, 25)), num(uniform(rng, 5, 25)), stroke)
	case 2:
		points := make([]string, 4)
		for i := range points {
			px := float64(x) + uniform(rng, -20, 20)
			py := float64(y) + uniform(rng, -20, 20)
			points[i] = num(px) + "," + num(py)
		}
		fmt.Fprintf(b, `    <polygon points="%s" %s/>`+"\n", strings.Join(points, " "), stroke)
	default:
		fmt.Fprintf(b, `    <path d="M%d,%d C%d,%d %d,%d %d,%d" %s/>`+"\n",
			x, y, x+10, y-10, x+20, y+10, x+30, y, stroke)
	}
}

func filler(rng *rand.Rand, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = fillerAlphabet[rng.IntN(len(fillerAlphabet))]
	}
	return string(buf)
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
