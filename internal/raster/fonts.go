package raster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrFontUnavailable reports that no CJK-capable font was found. Rendering
// still succeeds with a fallback font.
var ErrFontUnavailable = errors.New("no CJK-capable font available")

// probeRune is a common ideograph used to test CJK coverage.
const probeRune = '水'

// Known CJK fonts, tried in order after the configured paths.
var systemCJKFonts = []string{
	// Linux
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansSC-Regular.ttf",
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-zenhei.ttc",
	"/usr/share/fonts/wenquanyi/wqy-microhei/wqy-microhei.ttc",
	"/usr/share/fonts/truetype/arphic/uming.ttc",
	// macOS
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Light.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
	// Windows
	"C:/Windows/Fonts/msyh.ttc",
	"C:/Windows/Fonts/simhei.ttf",
	"C:/Windows/Fonts/simsun.ttc",
}

// Latin sans fonts, used when no CJK font loads.
var systemSansFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"/Library/Fonts/Arial.ttf",
	"C:/Windows/Fonts/arial.ttf",
}

// BuiltinFontName names the embedded Go Regular fallback.
const BuiltinFontName = "Go Regular"

// BitmapFontName names the last-resort bitmap face.
const BitmapFontName = "basicfont 7x13"

// FontSource resolves the raster font once and shares it read-only. Faces
// are not safe for concurrent use, so every render asks for its own.
type FontSource struct {
	paths  []string
	system bool

	once sync.Once
	font *sfnt.Font // nil means the bitmap face
	name string
	path string
	cjk  bool
	// skipped records every candidate that existed but failed to parse.
	skipped []error
}

// NewFontSource returns a source that tries paths first, then the known
// system fonts, then the built-in fonts.
func NewFontSource(paths ...string) *FontSource {
	return &FontSource{paths: paths, system: true}
}

// NewBuiltinFontSource returns a source that ignores system fonts. Output
// is then identical on every machine.
func NewBuiltinFontSource(paths ...string) *FontSource {
	return &FontSource{paths: paths}
}

func (s *FontSource) load() {
	s.once.Do(func() {
		candidates := append([]string(nil), s.paths...)
		if s.system {
			candidates = append(candidates, systemCJKFonts...)
		}

		var firstLatin *sfnt.Font
		var firstLatinPath string
		for _, path := range candidates {
			f, err := loadFontFile(path)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					s.skipped = append(s.skipped, err)
				}
				continue
			}
			if covers(f, probeRune) {
				s.use(f, path, true)
				return
			}
			if firstLatin == nil {
				firstLatin, firstLatinPath = f, path
			}
		}

		if s.system {
			for _, path := range systemSansFonts {
				if firstLatin != nil {
					break
				}
				f, err := loadFontFile(path)
				if err != nil {
					continue
				}
				firstLatin, firstLatinPath = f, path
			}
		}
		if firstLatin != nil {
			s.use(firstLatin, firstLatinPath, false)
			return
		}

		if f, err := opentype.Parse(goregular.TTF); err == nil {
			s.font, s.name = f, BuiltinFontName
			return
		}
		s.name = BitmapFontName
	})
}

func (s *FontSource) use(f *sfnt.Font, path string, cjk bool) {
	s.font, s.path, s.cjk = f, path, cjk
	s.name = fontName(f, path)
}

// Name describes the resolved font.
func (s *FontSource) Name() string {
	s.load()
	return s.name
}

// Path returns the file the font came from, or "" for built-in fonts.
func (s *FontSource) Path() string {
	s.load()
	return s.path
}

// SupportsCJK reports whether the resolved font has CJK glyphs.
func (s *FontSource) SupportsCJK() bool {
	s.load()
	return s.cjk
}

// Warning returns ErrFontUnavailable, wrapped with details, when the source
// fell back to a font without CJK glyphs. Otherwise it returns nil.
func (s *FontSource) Warning() error {
	s.load()
	if s.cjk {
		return nil
	}
	if len(s.skipped) > 0 {
		return fmt.Errorf("%w: using %s (%w)", ErrFontUnavailable, s.name, errors.Join(s.skipped...))
	}
	return fmt.Errorf("%w: using %s", ErrFontUnavailable, s.name)
}

// Face returns a new face at size pixels. It never fails: if the outline
// font cannot produce a face the bitmap face is returned.
func (s *FontSource) Face(size float64) font.Face {
	s.load()
	if s.font == nil || size <= 0 {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// loadFontFile parses a single font or the first font of a collection.
func loadFontFile(path string) (*sfnt.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".ttc" || ext == ".otc" {
		col, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font collection %s: %w", path, err)
		}
		f, err := col.Font(0)
		if err != nil {
			return nil, fmt.Errorf("reading font collection %s: %w", path, err)
		}
		return f, nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	return f, nil
}

func covers(f *sfnt.Font, r rune) bool {
	var buf sfnt.Buffer
	idx, err := f.GlyphIndex(&buf, r)
	return err == nil && idx != 0
}

func fontName(f *sfnt.Font, path string) string {
	var buf sfnt.Buffer
	if name, err := f.Name(&buf, sfnt.NameIDFull); err == nil && name != "" {
		return name
	}
	return filepath.Base(path)
}
