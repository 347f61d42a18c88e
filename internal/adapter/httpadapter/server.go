package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/pipeline"
)

// Dashboard is the rendering surface the API serves.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Pages() []pipeline.PageInfo
	Bounds(ctx context.Context, pageID string, pollutant domain.PollutantKind) (domain.YearRange, error)
	Render(ctx context.Context, pageID string, sel domain.Selection) (*pipeline.Page, error)
}

// Invalidator drops cached source tables so the next render rereads them.
type Invalidator interface {
	InvalidateAll()
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api routes. A nil cache leaves out the reload route.
func NewServer(addr string, dash Dashboard, cache Invalidator, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dash:   dash,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(dash))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/pages", s.handlePages)
	mux.HandleFunc("GET /api/pages/{page}", s.handleRender)
	mux.HandleFunc("GET /api/pages/{page}/bounds", s.handleBounds)
	if cache != nil {
		mux.HandleFunc("POST /api/sources/reload", func(w http.ResponseWriter, _ *http.Request) {
			cache.InvalidateAll()
			s.logger.Info("source cache cleared")
			w.WriteHeader(http.StatusNoContent)
		})
	}

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

func (s *Server) handlePages(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.dash.Pages())
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	pollutant, err := parsePollutant(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bounds, err := s.dash.Bounds(r.Context(), r.PathValue("page"), pollutant)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, bounds)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.dash.Render(r.Context(), r.PathValue("page"), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, page)
}

// badRequest marks errors caused by the query string.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func parsePollutant(r *http.Request) (domain.PollutantKind, error) {
	raw := r.URL.Query().Get("pollutant")
	if raw == "" {
		return "", nil
	}
	kind, err := domain.ParsePollutantKind(raw)
	if err != nil {
		return "", badRequest{err}
	}
	return kind, nil
}

func parseSelection(r *http.Request) (domain.Selection, error) {
	var sel domain.Selection
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"from", &sel.From}, {"to", &sel.To}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return sel, badRequest{fmt.Errorf("%s: invalid year %q", p.name, raw)}
		}
		*p.dst = year
	}

	kind, err := parsePollutant(r)
	if err != nil {
		return sel, err
	}
	sel.Pollutant = kind
	return sel, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var bad badRequest
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &bad), errors.Is(err, domain.ErrUnknownPollutant):
		status = http.StatusBadRequest
	case errors.Is(err, pipeline.ErrUnknownPage):
		status = http.StatusNotFound
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
