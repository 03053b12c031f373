// Package http serves read-only diagnostics for running chains: operator
// acceptance and tuning as JSON or markdown, Prometheus metrics and a stream
// of accepted states.
package http

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/sprig/pkg/operator"
)

// Chain is the read side of a running chain.
type Chain interface {
	ID() string
	State() uint64
	LogDensity() float64
	Schedule() *operator.Schedule
}

// Registry lists the chains to expose.
type Registry interface {
	Chains() []Chain
}

// Server handles the diagnostics routes.
type Server struct {
	Registry Registry
	Streams  *StreamManager
	Version  string
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*config)

type config struct {
	gatherer prometheus.Gatherer
	streams  *StreamManager
	version  string
	logger   *slog.Logger
}

// WithGatherer serves /metrics from g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *config) { c.gatherer = g }
}

// WithStreams serves /chains/{chain}/events from sm.
func WithStreams(sm *StreamManager) Option {
	return func(c *config) { c.streams = sm }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(c *config) { c.version = v }
}

// WithLogger sets the logger used for encode and stream errors.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// NewHandler creates the diagnostics router.
func NewHandler(reg Registry, opts ...Option) http.Handler {
	cfg := config{version: "dev", logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Server{Registry: reg, Streams: cfg.streams, Version: cfg.version, logger: cfg.logger}

	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/chains", func(r chi.Router) {
		r.Get("/", s.ListChains)
		r.Route("/{chain}", func(r chi.Router) {
			r.Get("/", s.GetChain)
			r.Get("/operators", s.ListOperators)
			r.Get("/operators/{name}", s.GetOperator)
			r.Get("/report", s.GetReport)
			if s.Streams != nil {
				r.Get("/events", s.SubscribeEvents)
			}
		})
	})
	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ChainSummary is the JSON view of one chain.
type ChainSummary struct {
	ID         string   `json:"id"`
	State      uint64   `json:"state"`
	LogDensity *float64 `json:"log_density,omitempty"`
	Operators  int      `json:"operators"`
}

func summarise(c Chain) ChainSummary {
	out := ChainSummary{ID: c.ID(), State: c.State(), Operators: c.Schedule().Len()}
	if lp := c.LogDensity(); !math.IsNaN(lp) {
		out.LogDensity = &lp
	}
	return out
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "sprig",
		"version": s.Version,
		"chains":  len(s.Registry.Chains()),
	})
}

// ListChains handles the GET /chains request.
func (s *Server) ListChains(w http.ResponseWriter, r *http.Request) {
	chains := s.Registry.Chains()
	out := make([]ChainSummary, 0, len(chains))
	for _, c := range chains {
		out = append(out, summarise(c))
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetChain handles the GET /chains/{chain} request.
func (s *Server) GetChain(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, summarise(c))
}

// ListOperators handles the GET /chains/{chain}/operators request.
func (s *Server) ListOperators(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, rows(operator.Analyse(c.Schedule())))
}

// GetOperator handles the GET /chains/{chain}/operators/{name} request.
func (s *Server) GetOperator(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	for _, row := range rows(operator.Analyse(c.Schedule())) {
		if row.Name == name {
			s.writeJSON(w, http.StatusOK, row)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "operator not found: "+name)
}

// GetReport handles the GET /chains/{chain}/report request.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if _, err := w.Write([]byte(operator.Markdown(operator.Analyse(c.Schedule())))); err != nil {
		s.logger.Error("report write failed", "chain", c.ID(), "error", err)
	}
}

// Row is an analysis row with its band spelled out.
type Row struct {
	operator.AnalysisRow
	Band string `json:"band"`
}

func rows(in []operator.AnalysisRow) []Row {
	out := make([]Row, len(in))
	for i, r := range in {
		out[i] = Row{AnalysisRow: r, Band: r.Band.String()}
	}
	return out
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (Chain, bool) {
	id := chi.URLParam(r, "chain")
	for _, c := range s.Registry.Chains() {
		if c.ID() == id {
			return c, true
		}
	}
	s.writeError(w, http.StatusNotFound, "chain not found: "+id)
	return nil, false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
