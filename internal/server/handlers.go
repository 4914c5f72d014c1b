package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/meltforce/trainingload/internal/ingest/table"
	"github.com/meltforce/trainingload/internal/load"
	"github.com/meltforce/trainingload/internal/metrics"
	"github.com/meltforce/trainingload/internal/render"
)

// maxBodyBytes bounds a posted session sheet.
const maxBodyBytes = 1 << 20

const imageFilename = "training_load_summary.png"

type summaryRequest struct {
	Drills []load.DrillEntry `json:"drills"`
}

type summaryResponse struct {
	Summary load.SessionSummary `json:"summary"`
	Display load.Display        `json:"display"`
}

type referenceResponse struct {
	Duration  float64 `json:"duration"`
	Intensity float64 `json:"intensity"`
	Load      float64 `json:"load"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, referenceResponse{
		Duration:  s.ref.Duration,
		Intensity: s.ref.Intensity,
		Load:      s.ref.Load(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.summarize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary: summary,
		Display: load.NewDisplay(summary, s.ref),
	})
}

func (s *Server) handleSummaryImage(w http.ResponseWriter, r *http.Request) {
	style := s.style
	if lang := r.URL.Query().Get("lang"); lang != "" {
		var err error
		if style, err = s.style.WithLanguage(lang); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	summary, ok := s.summarize(w, r)
	if !ok {
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := render.Render(&buf, summary, s.ref, style); err != nil {
		s.log.Error("render error", "error", err, "request_id", requestIDFromContext(r))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.metrics.Rendered(start)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", imageFilename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Debug("writing image response", "error", err, "request_id", requestIDFromContext(r))
	}
}

// summarize decodes, validates and computes the posted session. On failure
// it writes the error response and returns false.
func (s *Server) summarize(w http.ResponseWriter, r *http.Request) (load.SessionSummary, bool) {
	entries, err := decodeDrills(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
			err = fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return load.SessionSummary{}, false
	}
	if err := load.Validate(entries); err != nil {
		writeJSON(w, http.StatusBadRequest, validationError(err))
		return load.SessionSummary{}, false
	}

	summary := load.ComputeSummary(entries, s.ref)
	dropped := load.Dropped(entries)
	s.metrics.Summary(metrics.SourceAPI, dropped)
	if dropped > 0 {
		s.log.Debug("dropped unnamed drills", "count", dropped, "request_id", requestIDFromContext(r))
	}
	return summary, true
}

// decodeDrills reads the drill list from a JSON body or, for text/csv, from
// a session sheet. A body over maxBodyBytes fails with *http.MaxBytesError.
func decodeDrills(w http.ResponseWriter, r *http.Request) ([]load.DrillEntry, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("invalid content type: %w", err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "text/csv":
		entries, err := table.Parse(body)
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		return entries, nil
	case "application/json":
		var req summaryRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return req.Drills, nil
	default:
		return nil, fmt.Errorf("unsupported content type %q", mediaType)
	}
}

type problem struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// validationError lists each row problem alongside the joined message.
func validationError(err error) map[string]any {
	resp := map[string]any{"error": err.Error()}
	var problems []problem
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			var re *load.RowError
			if errors.As(e, &re) {
				problems = append(problems, problem{Row: re.Row + 1, Field: re.Field, Reason: re.Reason})
			}
		}
	}
	if len(problems) > 0 {
		resp["problems"] = problems
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
