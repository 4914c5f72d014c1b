package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/trainingload/internal/config"
	"github.com/meltforce/trainingload/internal/mcp"
	"github.com/meltforce/trainingload/internal/metrics"
	"github.com/meltforce/trainingload/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (render and log settings)")
	remote := flag.String("remote", "", "trainingload server URL; computes locally when empty")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9101 (local mode only)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("trainingload-mcp", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	var backend mcp.Backend
	if *remote != "" {
		backend = mcp.NewHTTPClient(*remote)
		log.Info("using remote server", "url", *remote)
	} else {
		style, err := render.NewStyle(render.StyleOptions{
			Width:    cfg.Render.Width,
			Language: cfg.Render.Language,
			FontDir:  cfg.Render.FontDir,
		})
		if err != nil {
			log.Error("failed to load render style", "error", err)
			os.Exit(1)
		}
		reg := prometheus.NewRegistry()
		backend = mcp.NewLocal(style, metrics.New(reg))
		if *metricsAddr != "" {
			go serveMetrics(*metricsAddr, reg, log)
		}
	}

	s := mcp.New(backend, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server stopped", "error", err)
	}
}
