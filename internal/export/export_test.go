package export

import (
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/meltforce/trainingload/internal/metrics"
	"github.com/meltforce/trainingload/internal/render"
	"github.com/prometheus/client_golang/prometheus"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type fixture struct {
	src, out string
	state    *StateDB
	style    *render.Style
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	t.Cleanup(func() { state.Close() })

	style, err := render.NewStyle(render.StyleOptions{Width: 600})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	f := &fixture{src: t.TempDir(), out: t.TempDir(), state: state, style: style}

	writeFile(t, filepath.Join(f.src, "monday.csv"), "name,duration,exertion\nA,20,6\nB,30,8\n,5,5\n")
	writeFile(t, filepath.Join(f.src, "u13", "wednesday.CSV"), "Oefening;Duur (min);RPE\nRondo;15;5\n")
	writeFile(t, filepath.Join(f.src, "notes.txt"), "not a sheet")
	writeFile(t, filepath.Join(f.src, ".hidden", "old.csv"), "name,duration,exertion\nX,1,1\n")
	return f
}

func (f *fixture) run(t *testing.T, opts Options) *Stats {
	t.Helper()
	opts.SourceDir, opts.OutputDir = f.src, f.out
	stats, err := New(f.state, f.style, metrics.New(prometheus.NewRegistry()), opts, discard).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return stats
}

// TestExport verifies each sheet is rendered to a PNG that mirrors its
// relative path, and that hidden directories and other files are ignored.
func TestExport(t *testing.T) {
	f := newFixture(t)
	stats := f.run(t, Options{})

	if stats.FilesTotal != 2 || stats.FilesExported != 2 || stats.FilesErrored != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.DrillsTotal != 3 || stats.DrillsDropped != 1 {
		t.Errorf("drills = %d/%d, want 3/1", stats.DrillsTotal, stats.DrillsDropped)
	}

	for _, rel := range []string{"monday.png", filepath.Join("u13", "wednesday.png")} {
		file, err := os.Open(filepath.Join(f.out, rel))
		if err != nil {
			t.Fatalf("missing output %s: %v", rel, err)
		}
		if _, err := png.Decode(file); err != nil {
			t.Errorf("%s is not a PNG: %v", rel, err)
		}
		file.Close()
	}
}

// TestExportSkipsUnchanged verifies a second run skips files recorded in the
// state DB and that -force re-exports them.
func TestExportSkipsUnchanged(t *testing.T) {
	f := newFixture(t)
	f.run(t, Options{})

	stats := f.run(t, Options{})
	if stats.FilesSkipped != 2 || stats.FilesExported != 0 {
		t.Errorf("second run stats = %+v, want 2 skipped", stats)
	}

	writeFile(t, filepath.Join(f.src, "monday.csv"), "name,duration,exertion\nA,25,6\n")
	stats = f.run(t, Options{})
	if stats.FilesSkipped != 1 || stats.FilesExported != 1 {
		t.Errorf("after edit stats = %+v, want 1 skipped 1 exported", stats)
	}

	stats = f.run(t, Options{Force: true})
	if stats.FilesExported != 2 {
		t.Errorf("forced stats = %+v, want 2 exported", stats)
	}
}

// TestExportMissingOutput verifies a recorded file is exported again when
// its image has been deleted.
func TestExportMissingOutput(t *testing.T) {
	f := newFixture(t)
	f.run(t, Options{})
	if err := os.Remove(filepath.Join(f.out, "monday.png")); err != nil {
		t.Fatal(err)
	}

	stats := f.run(t, Options{})
	if stats.FilesExported != 1 || stats.FilesSkipped != 1 {
		t.Errorf("stats = %+v, want 1 exported 1 skipped", stats)
	}
}

// TestExportNewOutputDir verifies that pointing a second run at a fresh
// output directory exports every sheet again.
func TestExportNewOutputDir(t *testing.T) {
	f := newFixture(t)
	f.run(t, Options{})

	f.out = t.TempDir()
	stats := f.run(t, Options{})
	if stats.FilesExported != 2 || stats.FilesSkipped != 0 {
		t.Errorf("stats = %+v, want 2 exported", stats)
	}
	if !fileExists(filepath.Join(f.out, "monday.png")) {
		t.Error("monday.png missing from new output directory")
	}
}

// TestExportStyleChange verifies a change of language or width re-exports
// sheets that are otherwise unchanged.
func TestExportStyleChange(t *testing.T) {
	f := newFixture(t)
	f.run(t, Options{})

	nl, err := f.style.WithLanguage("nl")
	if err != nil {
		t.Fatal(err)
	}
	f.style = nl
	if stats := f.run(t, Options{}); stats.FilesExported != 2 {
		t.Errorf("language change stats = %+v, want 2 exported", stats)
	}

	wide, err := render.NewStyle(render.StyleOptions{Width: 800, Language: "nl"})
	if err != nil {
		t.Fatal(err)
	}
	f.style = wide
	if stats := f.run(t, Options{}); stats.FilesExported != 2 {
		t.Errorf("width change stats = %+v, want 2 exported", stats)
	}

	if stats := f.run(t, Options{}); stats.FilesSkipped != 2 {
		t.Errorf("unchanged style stats = %+v, want 2 skipped", stats)
	}
}

// TestExportDryRun verifies a dry run writes neither images nor state.
func TestExportDryRun(t *testing.T) {
	f := newFixture(t)
	stats := f.run(t, Options{DryRun: true})
	if stats.FilesExported != 2 {
		t.Errorf("stats = %+v", stats)
	}
	entries, err := os.ReadDir(f.out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d entries", len(entries))
	}

	stats = f.run(t, Options{})
	if stats.FilesExported != 2 {
		t.Errorf("dry run recorded state: %+v", stats)
	}
}

// TestExportBadSheet verifies a broken sheet is counted and the run continues.
func TestExportBadSheet(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.src, "broken.csv"), "name,duration\nA,10\n")
	writeFile(t, filepath.Join(f.src, "invalid.csv"), "name,duration,exertion\nA,10,14\n")

	stats := f.run(t, Options{})
	if stats.FilesErrored != 2 || stats.FilesExported != 2 {
		t.Errorf("stats = %+v, want 2 errored 2 exported", stats)
	}
	if _, err := os.Stat(filepath.Join(f.out, "broken.png")); !os.IsNotExist(err) {
		t.Errorf("broken.png should not exist, stat err = %v", err)
	}
}

// TestExportCancelled verifies a cancelled context stops the run.
func TestExportCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f.state, f.style, nil, Options{SourceDir: f.src, OutputDir: f.out}, discard).Run(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
}

// TestExportMissingSource verifies a missing source directory is an error.
func TestExportMissingSource(t *testing.T) {
	f := newFixture(t)
	opts := Options{SourceDir: filepath.Join(f.src, "nope"), OutputDir: f.out}
	if _, err := New(f.state, f.style, nil, opts, discard).Run(context.Background()); err == nil {
		t.Fatal("expected walk error")
	}
}

// TestStateDB verifies that files are matched on path, output, style, size
// and hash.
func TestStateDB(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	if ok, err := state.IsExported("a.csv", "/out/a.png", "en", 10, "h1"); err != nil || ok {
		t.Fatalf("fresh db: ok=%v err=%v", ok, err)
	}
	if err := state.MarkExported("a.csv", "/out/a.png", "en", 10, "h1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		output string
		style  string
		size   int64
		hash   string
		want   bool
	}{
		{"same", "/out/a.png", "en", 10, "h1", true},
		{"size", "/out/a.png", "en", 11, "h1", false},
		{"hash", "/out/a.png", "en", 10, "h2", false},
		{"output", "/other/a.png", "en", 10, "h1", false},
		{"style", "/out/a.png", "nl", 10, "h1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := state.IsExported("a.csv", tt.output, tt.style, tt.size, tt.hash)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.want {
				t.Errorf("IsExported = %v, want %v", ok, tt.want)
			}
		})
	}
}

// TestHashFile verifies the SHA-256 of a known input.
func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x")
	writeFile(t, path, "abc")
	got, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("HashFile = %s, want %s", got, want)
	}
}
