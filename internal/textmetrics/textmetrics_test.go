package textmetrics

// Notes:
// - Wrap bound: checked with randomized mixed-script input; the only allowed
//   overflow is a line holding a single unbreakable unit.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestEstimateWidth - Glyph class multipliers
// ---------------------------------------------------------------------------

func TestEstimateWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		fontSize int
		want     float64
	}{
		{"empty", "", 12, 0},
		{"cjk", "水泥", 12, 24},
		{"digits", "123", 10, 18},
		{"letters", "abC", 10, 15},
		{"punctuation and space", "( )", 10, 12},
		{"mixed", "GB 175", 10, 5 + 5 + 4 + 6 + 6 + 6},
		{"fullwidth punctuation is other", "，", 10, 4},
		{"non-ascii letter is other", "é", 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := EstimateWidth(tt.text, tt.fontSize)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateWidth(%q, %d) = %v, want %v", tt.text, tt.fontSize, got, tt.want)
			}
		})
	}
}

func TestAvailableWidth(t *testing.T) {
	t.Parallel()

	got := AvailableWidth(40, 1)
	if math.Abs(got-34.2) > 1e-9 {
		t.Errorf("AvailableWidth(40, 1) = %v, want 34.2", got)
	}
}

// ---------------------------------------------------------------------------
// TestWrap - Paragraphs, CJK and word wrapping
// ---------------------------------------------------------------------------

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		available float64
		fontSize  int
		want      []string
	}{
		{
			name:      "empty text yields one blank line",
			text:      "",
			available: 100,
			fontSize:  10,
			want:      []string{""},
		},
		{
			name:      "fits on one line",
			text:      "abc",
			available: 100,
			fontSize:  10,
			want:      []string{"abc"},
		},
		{
			name:      "manual newlines are kept including blank paragraphs",
			text:      "a\n\nb",
			available: 100,
			fontSize:  10,
			want:      []string{"a", "", "b"},
		},
		{
			name:      "cjk wraps per character",
			text:      "通用硅酸盐水泥",
			available: 30,
			fontSize:  10,
			want:      []string{"通用硅", "酸盐水", "泥"},
		},
		{
			name:      "latin wraps per word",
			text:      "ab cd ef",
			available: 26,
			fontSize:  10,
			want:      []string{"ab cd", "ef"},
		},
		{
			name:      "whitespace runs inside a line are kept",
			text:      "  ab  cd",
			available: 1000,
			fontSize:  10,
			want:      []string{"  ab  cd"},
		},
		{
			name:      "run at a break is dropped",
			text:      "ab   cd ef",
			available: 26,
			fontSize:  10,
			want:      []string{"ab", "cd ef"},
		},
		{
			name:      "indentation stays on the first line only",
			text:      "  ab cd",
			available: 26,
			fontSize:  10,
			want:      []string{"  ab", "cd"},
		},
		{
			name:      "whitespace-only paragraph is a blank line",
			text:      " \t ",
			available: 26,
			fontSize:  10,
			want:      []string{""},
		},
		{
			name:      "long word is never split",
			text:      "abcdefgh ij",
			available: 20,
			fontSize:  10,
			want:      []string{"abcdefgh", "ij"},
		},
		{
			name:      "mixed paragraph with cjk wraps per character",
			text:      "GB水泥",
			available: 20,
			fontSize:  10,
			want:      []string{"GB水", "泥"},
		},
		{
			name:      "budget smaller than one glyph still terminates",
			text:      "水泥",
			available: 1,
			fontSize:  10,
			want:      []string{"水", "泥"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Wrap(tt.text, tt.available, tt.fontSize)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Wrap(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestWrap_NeverExceedsBudget(t *testing.T) {
	t.Parallel()

	alphabet := []rune("水泥硅酸盐abcXYZ0123 -,.()")
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 500; i++ {
		n := rng.IntN(60)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.IntN(len(alphabet))]
		}
		text := string(runes)
		fontSize := 8 + rng.IntN(8)
		available := float64(10 + rng.IntN(200))

		for _, line := range Wrap(text, available, fontSize) {
			if EstimateWidth(line, fontSize) <= available {
				continue
			}
			if containsCJK(line) && len([]rune(line)) == 1 {
				continue
			}
			if !containsCJK(line) && len(strings.Fields(line)) == 1 {
				continue
			}
			t.Fatalf("line %q of %q exceeds budget %v (width %v)", line, text, available, EstimateWidth(line, fontSize))
		}
	}
}

func TestWrap_PreservesParagraphCount(t *testing.T) {
	t.Parallel()

	text := "常规5个工作日\n委托单SN-2024-001"
	lines := Wrap(text, 1000, 12)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), lines)
	}
}

func TestCountNonEmpty(t *testing.T) {
	t.Parallel()

	got := CountNonEmpty([]string{"a", "", "  ", "b"})
	if got != 2 {
		t.Errorf("CountNonEmpty() = %d, want 2", got)
	}
}
