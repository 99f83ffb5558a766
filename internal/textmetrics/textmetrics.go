// Package textmetrics estimates rendered text width by glyph class and wraps
// text into lines that fit a pixel budget.
//
// The estimate stands in for real font metrics. Both table renderers consume
// the lines produced here, so the numbers must not change between them.
package textmetrics

import (
	"strings"
	"unicode"
)

// Per-class width multipliers, applied to the font size.
const (
	cjkFactor   = 1.0
	digitFactor = 0.6
	alphaFactor = 0.5
	otherFactor = 0.4
)

// SafetyFactor shrinks the budget to absorb estimation error.
const SafetyFactor = 0.95

// IsCJK reports whether r is a CJK unified ideograph (U+4E00..U+9FFF).
func IsCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// RuneWidth returns the estimated advance of a single rune.
func RuneWidth(r rune, fontSize int) float64 {
	size := float64(fontSize)
	switch {
	case IsCJK(r):
		return size * cjkFactor
	case r >= '0' && r <= '9':
		return size * digitFactor
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return size * alphaFactor
	default:
		return size * otherFactor
	}
}

// EstimateWidth sums the per-rune estimates of text.
func EstimateWidth(text string, fontSize int) float64 {
	var width float64
	for _, r := range text {
		width += RuneWidth(r, fontSize)
	}
	return width
}

// AvailableWidth returns the wrapping budget for a column:
// (columnWidth - 4*textMargin) scaled by SafetyFactor.
func AvailableWidth(columnWidth, textMargin int) float64 {
	return float64(columnWidth-4*textMargin) * SafetyFactor
}

// Wrap splits text on literal newlines and greedily wraps every paragraph so
// that no line's estimated width exceeds available. Paragraphs containing a
// CJK ideograph wrap per character; other paragraphs wrap per word and never
// break inside a word; whitespace between words on one line is kept as
// written. Every paragraph yields at least one line, so empty
// paragraphs come back as blank lines. A single unit wider than the budget is
// placed on its own line.
func Wrap(text string, available float64, fontSize int) []string {
	paragraphs := strings.Split(text, "\n")
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p == "" {
			lines = append(lines, "")
			continue
		}
		if containsCJK(p) {
			lines = append(lines, wrapRunes(p, available, fontSize)...)
		} else {
			lines = append(lines, wrapWords(p, available, fontSize)...)
		}
	}
	return lines
}

// CountNonEmpty returns the number of lines that contain something other than
// whitespace.
func CountNonEmpty(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

func containsCJK(s string) bool {
	for _, r := range s {
		if IsCJK(r) {
			return true
		}
	}
	return false
}

func wrapRunes(p string, available float64, fontSize int) []string {
	var lines []string
	var cur strings.Builder
	curWidth := 0.0
	for _, r := range p {
		w := RuneWidth(r, fontSize)
		if cur.Len() > 0 && curWidth+w > available {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += w
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// wrapWords breaks p between words. Whitespace runs inside a line and the
// leading indentation are kept verbatim; the run at a break is dropped.
func wrapWords(p string, available float64, fontSize int) []string {
	if strings.TrimSpace(p) == "" {
		return []string{""}
	}

	var lines []string
	var cur, gap string
	curWidth := 0.0
	for _, tok := range splitRuns(p) {
		if strings.TrimSpace(tok) == "" {
			if len(lines) == 0 && cur == "" {
				cur, curWidth = tok, EstimateWidth(tok, fontSize)
			} else {
				gap = tok
			}
			continue
		}
		w := EstimateWidth(tok, fontSize)
		gw := EstimateWidth(gap, fontSize)
		if strings.TrimSpace(cur) != "" && curWidth+gw+w > available {
			lines = append(lines, cur)
			cur, curWidth = tok, w
		} else {
			cur += gap + tok
			curWidth += gw + w
		}
		gap = ""
	}
	return append(lines, cur)
}

// splitRuns cuts s into alternating runs of whitespace and non-whitespace.
func splitRuns(s string) []string {
	var runs []string
	start := 0
	prev := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i > 0 && space != prev {
			runs = append(runs, s[start:i])
			start = i
		}
		prev = space
	}
	return append(runs, s[start:])
}
