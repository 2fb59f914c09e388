// Package api serves recorded simulation runs over HTTP (JSON, charts and
// plots) and exposes a gRPC health service for the simulation process.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/intersim/internal/db"
	"github.com/banshee-data/intersim/internal/httputil"
	"github.com/banshee-data/intersim/internal/monitoring"
	"github.com/banshee-data/intersim/internal/report"
	"github.com/banshee-data/intersim/internal/units"
	"github.com/banshee-data/intersim/internal/version"
)

// DefaultRunLimit caps GET /api/runs when no limit is given.
const DefaultRunLimit = 50

// Server handles the HTTP interface over the run store.
type Server struct {
	address string
	db      *db.DB
	units   string
	server  *http.Server
}

// ServerConfig contains configuration options for the server.
type ServerConfig struct {
	Address string
	DB      *db.DB
	// Units is the default speed unit for charts; see internal/units.
	Units string
}

// NewServer creates a server with its routes mounted.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		address: cfg.Address,
		db:      cfg.DB,
		units:   cfg.Units,
	}
	if s.units == "" {
		s.units = units.MPS
	}
	s.server = &http.Server{
		Addr:              s.address,
		Handler:           LoggingMiddleware(s.ServeMux()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ServeMux returns the routes without the logging middleware.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/runs", s.handleListRuns)
	mux.HandleFunc("/api/runs/{id}", s.handleRun)
	mux.HandleFunc("/api/runs/{id}/collisions", s.handleCollisions)
	mux.HandleFunc("/api/runs/{id}/summary", s.handleSummary)
	mux.HandleFunc("/charts/runs/{id}/speed", s.handleSpeedChart)
	mux.HandleFunc("/charts/runs/{id}/trajectories.png", s.handleTrajectoryPlot)
	s.db.AttachAdminRoutes(mux)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully. It
// returns the listen error if the server fails to start.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		monitoring.Logf("Starting HTTP server on %s", s.address)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := s.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}

	monitoring.Logf("HTTP server routine stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}

// handleListRuns returns the most recent runs, newest first.
// Query params:
//
//	limit (optional, default 50)
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	limit := DefaultRunLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = n
	}
	runs, err := s.db.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		run, ok := s.lookupRun(w, r)
		if !ok {
			return
		}
		httputil.WriteJSONOK(w, run)
	case http.MethodDelete:
		if err := s.db.DeleteRun(r.PathValue("id")); err != nil {
			s.writeRunError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		httputil.MethodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleCollisions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	events, err := s.db.Collisions(run.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to read collisions: %v", err))
		return
	}
	if events == nil {
		events = []db.CollisionEvent{}
	}
	httputil.WriteJSONOK(w, events)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	traj, err := s.db.Trajectories(run.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to read frames: %v", err))
		return
	}
	httputil.WriteJSONOK(w, report.Summarise(traj))
}

// handleSpeedChart renders the speed profile of every vehicle in a run.
// Query params:
//
//	units (optional, defaults to the server's units)
func (s *Server) handleSpeedChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	unit := s.units
	if u := r.URL.Query().Get("units"); u != "" {
		if !units.IsValid(u) {
			httputil.BadRequest(w, fmt.Sprintf("invalid 'units' parameter, must be one of: %s", units.GetValidUnitsString()))
			return
		}
		unit = u
	}
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	traj, err := s.db.Trajectories(run.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to read frames: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderSpeedChart(w, runTitle(run), traj, unit); err != nil {
		monitoring.Logf("speed chart for run %s: %v", run.ID, err)
	}
}

func (s *Server) handleTrajectoryPlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	traj, err := s.db.Trajectories(run.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to read frames: %v", err))
		return
	}
	collisions, err := s.db.Collisions(run.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to read collisions: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := report.WriteTrajectoryPNG(w, runTitle(run), traj, collisions); err != nil {
		monitoring.Logf("trajectory plot for run %s: %v", run.ID, err)
	}
}

// lookupRun fetches the run named by the {id} path value, writing a 404 or
// 500 and returning false on failure.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*db.Run, bool) {
	run, err := s.db.GetRun(r.PathValue("id"))
	if err != nil {
		s.writeRunError(w, err)
		return nil, false
	}
	return run, true
}

func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, "run not found")
		return
	}
	httputil.InternalServerError(w, err.Error())
}

func runTitle(run *db.Run) string {
	if run.TrackName == "" {
		return "run " + run.ID
	}
	return fmt.Sprintf("%s (run %s)", run.TrackName, run.ID)
}
