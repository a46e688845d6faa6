package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/observation-gapfill/internal/domain"
)

const maxDocumentBytes = 16 << 20

// DocumentFiller fills a serialized feature collection.
type DocumentFiller interface {
	FillBytes(ctx context.Context, data []byte) ([]byte, domain.FillResult, error)
}

// Server exposes health, readiness, metrics, and the synchronous fill endpoint.
type Server struct {
	httpServer *http.Server
	filler     DocumentFiller
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /v1/fill routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, filler DocumentFiller, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		filler: filler,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/fill", s.handleFill)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleFill returns the filled document as the body and the synthesized
// timestamps in the X-Synthesized-Count header plus one X-Synthesized header each.
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, result, err := s.filler.FillBytes(r.Context(), body)
	if err != nil {
		s.logger.Warn("fill request rejected", "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Synthesized-Count", strconv.Itoa(len(result.Synthesized)))
	for _, ts := range result.Synthesized {
		w.Header().Add("X-Synthesized", ts)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(out) //nolint:errcheck // client went away
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedDocument), errors.Is(err, domain.ErrMalformedTimestamp):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoConvergence):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}) //nolint:errcheck // best-effort error body
}
