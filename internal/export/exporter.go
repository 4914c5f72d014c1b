// Package export renders a directory of session sheets to summary images.
package export

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meltforce/trainingload/internal/ingest/table"
	"github.com/meltforce/trainingload/internal/load"
	"github.com/meltforce/trainingload/internal/metrics"
	"github.com/meltforce/trainingload/internal/render"
)

// Stats tracks export progress.
type Stats struct {
	FilesTotal    int
	FilesExported int
	FilesSkipped  int
	FilesErrored  int

	DrillsTotal   int
	DrillsDropped int
}

// Options control a run.
type Options struct {
	SourceDir string
	OutputDir string
	DryRun    bool // parse and compute, but write nothing
	Force     bool // ignore the state DB
}

// Exporter walks a directory of CSV session sheets and renders each to
// <out>/<name>.png, mirroring subdirectories.
type Exporter struct {
	state   *StateDB
	style   *render.Style
	metrics *metrics.Metrics
	opts    Options
	ref     load.MatchReference
	log     *slog.Logger
	stats   Stats
}

// New creates a new Exporter.
func New(state *StateDB, style *render.Style, m *metrics.Metrics, opts Options, log *slog.Logger) *Exporter {
	return &Exporter{
		state:   state,
		style:   style,
		metrics: m,
		opts:    opts,
		ref:     load.DefaultMatchReference,
		log:     log,
	}
}

// Run exports every sheet below the source directory. Per-file failures are
// logged and counted; only walk errors and cancellation stop the run.
func (e *Exporter) Run(ctx context.Context) (*Stats, error) {
	files, err := e.findSheets()
	if err != nil {
		return &e.stats, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &e.stats, err
		}
		e.stats.FilesTotal++
		if err := e.exportFile(path); err != nil {
			e.log.Warn("export failed", "file", path, "error", err)
			e.stats.FilesErrored++
		}
	}

	return &e.stats, nil
}

func (e *Exporter) findSheets() ([]string, error) {
	var files []string
	err := filepath.WalkDir(e.opts.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != e.opts.SourceDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", e.opts.SourceDir, err)
	}
	return files, nil
}

func (e *Exporter) exportFile(path string) error {
	relPath, err := filepath.Rel(e.opts.SourceDir, path)
	if err != nil {
		return fmt.Errorf("relative path: %w", err)
	}
	outPath := filepath.Join(e.opts.OutputDir, strings.TrimSuffix(relPath, filepath.Ext(relPath))+".png")

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	if !e.opts.Force {
		exported, err := e.state.IsExported(relPath, outPath, e.style.Key(), info.Size(), hash)
		if err != nil {
			return fmt.Errorf("state check: %w", err)
		}
		if exported && fileExists(outPath) {
			e.log.Debug("unchanged, skipping", "file", relPath)
			e.stats.FilesSkipped++
			return nil
		}
	}

	summary, err := e.summarize(path)
	if err != nil {
		return err
	}

	if e.opts.DryRun {
		e.log.Info("would export", "file", relPath, "output", outPath,
			"drills", len(summary.Drills), "load", summary.TotalLoad)
		e.stats.FilesExported++
		return nil
	}

	if err := e.writeImage(outPath, summary); err != nil {
		return err
	}
	if err := e.state.MarkExported(relPath, outPath, e.style.Key(), info.Size(), hash); err != nil {
		return fmt.Errorf("recording state: %w", err)
	}

	e.log.Info("exported", "file", relPath, "output", outPath, "load", summary.TotalLoad)
	e.stats.FilesExported++
	return nil
}

func (e *Exporter) summarize(path string) (load.SessionSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return load.SessionSummary{}, fmt.Errorf("opening sheet: %w", err)
	}
	defer f.Close()

	entries, err := table.Parse(f)
	if err != nil {
		return load.SessionSummary{}, fmt.Errorf("parsing sheet: %w", err)
	}
	if err := load.Validate(entries); err != nil {
		return load.SessionSummary{}, fmt.Errorf("invalid sheet: %w", err)
	}

	dropped := load.Dropped(entries)
	e.stats.DrillsTotal += len(entries) - dropped
	e.stats.DrillsDropped += dropped
	e.metrics.Summary(metrics.SourceExport, dropped)

	return load.ComputeSummary(entries, e.ref), nil
}

// writeImage renders into a temp file next to outPath and renames it into place.
func (e *Exporter) writeImage(outPath string, s load.SessionSummary) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".trainingload-*.png")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	start := time.Now()
	if err := render.Render(tmp, s, e.ref, e.style); err != nil {
		tmp.Close()
		return err
	}
	e.metrics.Rendered(start)

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return fmt.Errorf("moving image into place: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
