package mcp

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/meltforce/trainingload/internal/load"
	"github.com/meltforce/trainingload/internal/metrics"
	"github.com/meltforce/trainingload/internal/render"
)

// Result is what compute_training_load returns.
type Result struct {
	Summary load.SessionSummary `json:"summary"`
	Display load.Display        `json:"display"`
}

// Backend computes and renders sessions for the MCP tools. Both Local
// (in-process) and HTTPClient (remote via REST API) satisfy this interface.
type Backend interface {
	Summarize(ctx context.Context, drills []load.DrillEntry) (*Result, error)
	RenderPNG(ctx context.Context, drills []load.DrillEntry, lang string) ([]byte, error)
}

// Compile-time check: *Local satisfies Backend.
var _ Backend = (*Local)(nil)

// Local computes summaries in-process against the default match reference.
type Local struct {
	style   *render.Style
	ref     load.MatchReference
	metrics *metrics.Metrics
}

// NewLocal creates an in-process backend.
func NewLocal(style *render.Style, m *metrics.Metrics) *Local {
	return &Local{style: style, ref: load.DefaultMatchReference, metrics: m}
}

func (l *Local) compute(drills []load.DrillEntry) (load.SessionSummary, error) {
	if err := load.Validate(drills); err != nil {
		return load.SessionSummary{}, err
	}
	l.metrics.Summary(metrics.SourceMCP, load.Dropped(drills))
	return load.ComputeSummary(drills, l.ref), nil
}

func (l *Local) Summarize(_ context.Context, drills []load.DrillEntry) (*Result, error) {
	s, err := l.compute(drills)
	if err != nil {
		return nil, err
	}
	return &Result{Summary: s, Display: load.NewDisplay(s, l.ref)}, nil
}

func (l *Local) RenderPNG(_ context.Context, drills []load.DrillEntry, lang string) ([]byte, error) {
	style := l.style
	if lang != "" {
		var err error
		if style, err = l.style.WithLanguage(lang); err != nil {
			return nil, err
		}
	}
	s, err := l.compute(drills)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := render.Render(&buf, s, l.ref, style); err != nil {
		return nil, fmt.Errorf("rendering summary: %w", err)
	}
	l.metrics.Rendered(start)
	return buf.Bytes(), nil
}
