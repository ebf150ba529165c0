package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chessmcts/agent"
	"chessmcts/experiments/metrics"
	"chessmcts/game"
	"chessmcts/searcher"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// AgentServer answers move requests over HTTP. Every request searches its own
// tree, so requests can be served concurrently.
type AgentServer struct {
	rules         game.Notation
	iterations    int
	maxIterations int
	options       []searcher.Option
	metrics       *metrics.Prometheus
	gatherer      prometheus.Gatherer
}

// NewAgentServer registers the search metrics on registry and returns a
// server searching iterations times per request unless the request asks for
// a different budget. Requests asking for more than maxIterations are
// rejected; a non-positive maxIterations lifts the limit.
func NewAgentServer(rules game.Notation, iterations, maxIterations int, registry *prometheus.Registry, options ...searcher.Option) (*AgentServer, error) {
	prom, err := metrics.NewPrometheus(registry)
	if err != nil {
		return nil, err
	}
	return &AgentServer{
		rules:         rules,
		iterations:    iterations,
		maxIterations: maxIterations,
		options:       options,
		metrics:       prom,
		gatherer:      registry,
	}, nil
}

func (s *AgentServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Post("/findmove", s.handleFindMove)
	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *AgentServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Msgf("agent server listening on %s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *AgentServer) handleFindMove(w http.ResponseWriter, r *http.Request) {
	var payload agent.FindMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	position, err := s.rules.ParsePosition(payload.Position)
	if err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	iterations := s.iterations
	if payload.Iterations > 0 {
		iterations = payload.Iterations
	}
	if s.maxIterations > 0 && iterations > s.maxIterations {
		http.Error(w, fmt.Sprintf("bad request: iterations %d exceed the limit of %d", iterations, s.maxIterations), http.StatusBadRequest)
		return
	}

	evalAgent := agent.NewInstrumentedAgent(s.rules, iterations, s.metrics.NewCollector, s.options...)
	move, metric, err := evalAgent.FindMove(r.Context(), position)
	if err != nil {
		http.Error(w, "search cancelled: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	response := agent.FindMoveResponse{Move: string(move), Metric: metric}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("failed to encode move")
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
