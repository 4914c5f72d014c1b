package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/meltforce/trainingload/internal/load"
	"golang.org/x/image/font/gofont/goregular"
)

func newTestStyle(t *testing.T, lang string) *Style {
	t.Helper()
	st, err := NewStyle(StyleOptions{Language: lang})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	return st
}

func sampleSummary() load.SessionSummary {
	return load.ComputeSummary([]load.DrillEntry{
		load.Entry("A", 20, 6),
		load.Entry("B", 30, 8),
	}, load.DefaultMatchReference)
}

// TestRenderPNG verifies that Render produces a decodable PNG of the expected size.
func TestRenderPNG(t *testing.T) {
	st := newTestStyle(t, "en")
	var buf bytes.Buffer
	if err := Render(&buf, sampleSummary(), load.DefaultMatchReference, st); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	w, h := Size(st, 2)
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}
	if w != 1200 || h != 800 {
		t.Errorf("Size(2 drills) = %dx%d, want 1200x800", w, h)
	}
}

// TestRenderEmpty verifies that an empty session still renders (all-zero
// totals) instead of failing.
func TestRenderEmpty(t *testing.T) {
	st := newTestStyle(t, "en")
	var buf bytes.Buffer
	s := load.ComputeSummary(nil, load.DefaultMatchReference)
	if err := Render(&buf, s, load.DefaultMatchReference, st); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty output")
	}
}

// TestRenderZeroReference verifies the bar graphic copes with an all-zero
// range (no load and no reference).
func TestRenderZeroReference(t *testing.T) {
	st := newTestStyle(t, "en")
	s := load.ComputeSummary([]load.DrillEntry{load.Entry("x", 0, 5)}, load.MatchReference{})
	if _, err := Draw(s, load.MatchReference{}, st); err != nil {
		t.Fatalf("Draw: %v", err)
	}
}

// TestShadedRows verifies the header and session rows carry the shade colour
// and a drill row does not.
func TestShadedRows(t *testing.T) {
	st := newTestStyle(t, "en")
	img, err := Draw(sampleSummary(), load.DefaultMatchReference, st)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	left, top, row := 1200/10, basePadding, baseRowHeight
	pixelAt := func(r int) color.RGBA {
		return img.RGBAAt(left+4, top+r*row+4)
	}
	shade := color.RGBAModel.Convert(st.Shade).(color.RGBA)

	if got := pixelAt(0); got != shade {
		t.Errorf("header pixel = %v, want %v", got, shade)
	}
	if got := pixelAt(3); got != shade {
		t.Errorf("session row pixel = %v, want %v", got, shade)
	}
	if got := pixelAt(1); got == shade {
		t.Errorf("drill row pixel = %v, want unshaded", got)
	}
}

// TestSizeGrows verifies the image gets taller as drills are added and never
// falls below the minimum height.
func TestSizeGrows(t *testing.T) {
	st := newTestStyle(t, "en")
	_, h0 := Size(st, 0)
	_, h10 := Size(st, 10)
	_, h20 := Size(st, 20)
	if h0 != 800 {
		t.Errorf("Size(0) height = %d, want 800", h0)
	}
	if !(h10 < h20) {
		t.Errorf("heights %d, %d not increasing", h10, h20)
	}
}

// TestManyDrills verifies long names and many rows still render.
func TestManyDrills(t *testing.T) {
	st := newTestStyle(t, "nl")
	var in []load.DrillEntry
	for i := 0; i < 25; i++ {
		in = append(in, load.Entry(fmt.Sprintf("Positiespel met overtal variant %d", i), 10, float64(i%10+1)))
	}
	s := load.ComputeSummary(in, load.DefaultMatchReference)
	img, err := Draw(s, load.DefaultMatchReference, st)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	_, h := Size(st, 25)
	if img.Bounds().Dy() != h {
		t.Errorf("height = %d, want %d", img.Bounds().Dy(), h)
	}
}

// TestScaledWidth verifies geometry follows the configured width.
func TestScaledWidth(t *testing.T) {
	st, err := NewStyle(StyleOptions{Width: 600})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	img, err := Draw(sampleSummary(), load.DefaultMatchReference, st)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 600, 400) {
		t.Errorf("bounds = %v, want 600x400", got)
	}
}

// TestLabelsFor verifies the supported languages and rejection of others.
func TestLabelsFor(t *testing.T) {
	nl, err := LabelsFor("nl")
	if err != nil {
		t.Fatalf("LabelsFor(nl): %v", err)
	}
	if nl.Drill != "Oefening" || nl.Session != "Sessie" || nl.Reference != "Wedstrijd referentie" {
		t.Errorf("nl labels = %+v", nl)
	}
	en, err := LabelsFor("")
	if err != nil {
		t.Fatalf("LabelsFor(\"\"): %v", err)
	}
	if en.TrainingIntensity != "Training intensity" {
		t.Errorf("default labels = %+v, want english", en)
	}
	if _, err := LabelsFor("fr"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

// TestWithLanguage verifies WithLanguage copies instead of mutating the base style.
func TestWithLanguage(t *testing.T) {
	base := newTestStyle(t, "en")
	nl, err := base.WithLanguage("nl")
	if err != nil {
		t.Fatalf("WithLanguage: %v", err)
	}
	if nl.Labels.Absolute != "Absoluut:" {
		t.Errorf("nl Absolute = %q", nl.Labels.Absolute)
	}
	if base.Labels.Absolute != "Absolute:" {
		t.Errorf("base style mutated: %q", base.Labels.Absolute)
	}
	if nl.Regular != base.Regular {
		t.Error("fonts should be shared")
	}
}

// TestFontDir verifies fonts are loaded from a directory and that a missing
// bold font falls back to the regular one.
func TestFontDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "regular.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := NewStyle(StyleOptions{FontDir: dir})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	if st.Bold == nil {
		t.Fatal("bold font not set")
	}
	if _, err := Draw(sampleSummary(), load.DefaultMatchReference, st); err != nil {
		t.Fatalf("Draw: %v", err)
	}
}

// TestFontDirErrors verifies missing or corrupt font files are reported.
func TestFontDirErrors(t *testing.T) {
	if _, err := NewStyle(StyleOptions{FontDir: t.TempDir()}); err == nil {
		t.Error("expected error for missing regular.ttf")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "regular.ttf"), []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStyle(StyleOptions{FontDir: dir}); err == nil {
		t.Error("expected error for corrupt font")
	}
}

// TestShorten verifies bar labels are cut to the limit.
func TestShorten(t *testing.T) {
	if got := shorten("Rondo", 14); got != "Rondo" {
		t.Errorf("shorten short = %q", got)
	}
	if got := shorten("Small-sided game 7v7", 14); got != "Small-sided..." {
		t.Errorf("shorten long = %q", got)
	}
}

// TestNewStyleNarrowWidth verifies widths below MinWidth are rejected.
func TestNewStyleNarrowWidth(t *testing.T) {
	if _, err := NewStyle(StyleOptions{Width: 50}); err == nil {
		t.Error("expected error for width 50")
	}
	if _, err := NewStyle(StyleOptions{Width: MinWidth}); err != nil {
		t.Errorf("width %d: %v", MinWidth, err)
	}
}

// TestStyleKey verifies Key changes with every setting that alters the image.
func TestStyleKey(t *testing.T) {
	base := newTestStyle(t, "")
	nl, err := base.WithLanguage("nl")
	if err != nil {
		t.Fatal(err)
	}
	wide, err := NewStyle(StyleOptions{Width: 1600})
	if err != nil {
		t.Fatal(err)
	}
	en := newTestStyle(t, "en")

	if base.Key() != en.Key() {
		t.Errorf("default and en keys differ: %q vs %q", base.Key(), en.Key())
	}
	if base.Key() == nl.Key() || base.Key() == wide.Key() {
		t.Errorf("keys should differ: %q, %q, %q", base.Key(), nl.Key(), wide.Key())
	}
}
