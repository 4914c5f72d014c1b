package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/meltforce/trainingload/internal/export"
	"github.com/meltforce/trainingload/internal/metrics"
	"github.com/meltforce/trainingload/internal/render"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	srcPath := flag.String("path", "", "directory with CSV session sheets")
	outPath := flag.String("out", "", "directory for the rendered images")
	lang := flag.String("lang", "en", "label language (en or nl)")
	width := flag.Int("width", render.DefaultWidth, "image width in pixels")
	fontDir := flag.String("font-dir", "", "directory with regular.ttf and bold.ttf (default: Go fonts)")
	dryRun := flag.Bool("dry-run", false, "parse and compute but don't write images")
	force := flag.Bool("force", false, "re-export files even if unchanged")
	metricsFile := flag.String("metrics-file", "", "write Prometheus metrics to this file after the run (textfile collector)")
	verbose := flag.Bool("v", false, "log skipped files")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("trainingload-export", Version)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if *srcPath == "" || (*outPath == "" && !*dryRun) {
		fmt.Fprintf(os.Stderr, "Usage: trainingload-export -path <sheets dir> -out <image dir> [-lang en|nl] [-dry-run] [-force]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*srcPath)
	if err != nil || !info.IsDir() {
		log.Error("source path does not exist or is not a directory", "path", *srcPath)
		os.Exit(1)
	}

	style, err := render.NewStyle(render.StyleOptions{Width: *width, Language: *lang, FontDir: *fontDir})
	if err != nil {
		log.Error("failed to load render style", "error", err)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".trainingload-export")

	state, err := export.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode: sheets will be parsed and computed but no images written")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	exp := export.New(state, style, metrics.New(reg), export.Options{
		SourceDir: *srcPath,
		OutputDir: *outPath,
		DryRun:    *dryRun,
		Force:     *force,
	}, log)
	stats, err := exp.Run(ctx)
	if *metricsFile != "" {
		if werr := metrics.WriteTextfile(*metricsFile, reg); werr != nil {
			log.Error("failed to write metrics", "error", werr)
		}
	}
	if err != nil {
		log.Error("export failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("export complete")
	if stats.FilesErrored > 0 {
		os.Exit(2)
	}
}

func printStats(stats *export.Stats) {
	fmt.Println()
	fmt.Println("=== Export Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files exported:   %d\n", stats.FilesExported)
	fmt.Printf("  Files skipped:    %d (unchanged)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Drills:           %d\n", stats.DrillsTotal)
	fmt.Printf("  Unnamed dropped:  %d\n", stats.DrillsDropped)
	fmt.Println()
}
