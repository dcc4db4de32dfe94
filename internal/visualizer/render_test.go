package visualizer

import (
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

func TestSpectrumRendersRequestedHeight(t *testing.T) {
	s := NewSpectrum()
	s.shades = newShades(termenv.Ascii)
	bars := []float64{1, 0.5, 0, 1}
	for range 60 {
		s.Update(bars, 40, 6)
	}
	lines := strings.Split(s.View(), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(lines))
	}
	if strings.TrimSpace(lines[0]) == "" {
		t.Fatalf("expected a full bar to reach the top row, got %q", lines[0])
	}
}

func TestSpectrumEmptyOnTinyArea(t *testing.T) {
	s := NewSpectrum()
	s.Update([]float64{1}, 2, 4)
	if s.View() != "" {
		t.Fatalf("expected empty view, got %q", s.View())
	}
}

func TestMirrorIsSymmetric(t *testing.T) {
	m := NewMirror()
	m.shades = newShades(termenv.Ascii)
	for range 60 {
		m.Update([]float64{0.5, 1}, 20, 8)
	}
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(lines))
	}
	for i := range 4 {
		if strings.TrimSpace(lines[i]) == "" != (strings.TrimSpace(lines[7-i]) == "") {
			t.Fatalf("rows %d and %d differ in fill: %q vs %q", i, 7-i, lines[i], lines[7-i])
		}
	}
}

func TestColumnsKeepsPeaks(t *testing.T) {
	got := columns([]float64{0.1, 0.9, 0.2, 0.3}, 2)
	if len(got) != 2 || got[0] != 0.9 || got[1] != 0.3 {
		t.Fatalf("expected [0.9 0.3], got %v", got)
	}
}

func TestMirrorCell(t *testing.T) {
	if mirrorCell(0, 2, 6) != ' ' {
		t.Fatal("expected empty cell above the fill")
	}
	if mirrorCell(3, 2, 6) != '█' {
		t.Fatal("expected full cell inside the fill")
	}
	if mirrorCell(1, 1.5, 6) != '▄' {
		t.Fatal("expected lower half cell at the top edge")
	}
}

func TestBrushWritesColorChangesOnly(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}

	var sb strings.Builder
	b := newShades(termenv.TrueColor).brush(&sb)
	b.set(red)
	b.set(red)
	b.set(blue)
	b.end()
	b.end()
	want := "\x1b[38;2;255;0;0m\x1b[38;2;0;0;255m\x1b[0m"
	if sb.String() != want {
		t.Fatalf("expected %q, got %q", want, sb.String())
	}

	sb.Reset()
	plain := newShades(termenv.Ascii).brush(&sb)
	plain.set(red)
	plain.end()
	if sb.Len() != 0 {
		t.Fatalf("expected no escapes without color support, got %q", sb.String())
	}
}

func TestLevelColorWarmsWithLevel(t *testing.T) {
	lo, hi := levelColor(0), levelColor(1)
	if hi.R <= lo.R || hi.B >= lo.B {
		t.Fatalf("expected full scale to be redder than the floor: %v vs %v", hi.Hex(), lo.Hex())
	}
	if levelColor(-3).Hex() != levelColor(0).Hex() {
		t.Fatal("expected levels below the floor to clip")
	}
}

func TestHueColorWraps(t *testing.T) {
	want := hueColor(0.25, 1).Hex()
	for _, h := range []float64{1.25, -0.75} {
		if got := hueColor(h, 1).Hex(); got != want {
			t.Fatalf("hueColor(%v) = %s, want %s", h, got, want)
		}
	}
}
