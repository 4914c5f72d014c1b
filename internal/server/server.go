package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/trainingload/internal/load"
	"github.com/meltforce/trainingload/internal/metrics"
	"github.com/meltforce/trainingload/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	style    *render.Style
	ref      load.MatchReference
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	identity whoIser
	log      *slog.Logger
	router   chi.Router
}

// New creates a new Server with all routes configured. gatherer backs
// /metrics; when nil the endpoint is not mounted.
func New(style *render.Style, m *metrics.Metrics, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	s := &Server{
		style:    style,
		ref:      load.DefaultMatchReference,
		metrics:  m,
		gatherer: gatherer,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(s.identify)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/reference", s.handleReference)
		r.Post("/summary", s.handleSummary)
		r.Post("/summary/image", s.handleSummaryImage)
	})

	if s.gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// SetTailscale enables per-request identity lookup through the tailnet.
func (s *Server) SetTailscale(lc whoIser) {
	s.identity = lc
}

func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.identity == nil {
			DevIdentity(next).ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.identity, s.log)(next).ServeHTTP(w, r)
	})
}
