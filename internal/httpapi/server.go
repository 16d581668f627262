package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/narrativegraph/pathfinder/internal/jsonx"
	"github.com/narrativegraph/pathfinder/internal/runconfig"
)

// Server exposes a RunManager over HTTP: JWT-protected admin endpoints to
// start/cancel/inspect runs, plus a public read-only viewer WebSocket and
// health check, grounded on agent.Server.SetupRoutes's public/protect split.
type Server struct {
	runs    *RunManager
	hub     *Hub
	limiter *RateLimiter
	logger  *zap.Logger
}

// NewServer returns a Server delegating to runs and hub.
func NewServer(runs *RunManager, hub *Hub, limiter *RateLimiter, logger *zap.Logger) *Server {
	return &Server{runs: runs, hub: hub, limiter: limiter, logger: logger.Named("httpapi")}
}

// SetupRoutes registers every endpoint on r, matching
// agent.Server.SetupRoutes's public-routes-then-protect-wrap shape.
func (s *Server) SetupRoutes(r *mux.Router, jwtMiddleware *JWTMiddleware) {
	protect := func(h http.HandlerFunc) http.Handler {
		return jwtMiddleware.Middleware(h)
	}
	limit := func(endpoint string, h http.HandlerFunc) http.HandlerFunc {
		if s.limiter == nil {
			return h
		}
		return s.limiter.Middleware(endpoint, h)
	}

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Handle("/runs", protect(limit("start_run", s.handleStartRun))).Methods("POST")
	admin.Handle("/runs/{id}", protect(limit("get_run", s.handleGetRun))).Methods("GET")
	admin.Handle("/runs/{id}", protect(limit("cancel_run", s.handleCancelRun))).Methods("DELETE")
	admin.Handle("/runs/{id}/search", protect(limit("search_run", s.handleSearchRun))).Methods("GET")

	r.HandleFunc("/runs/{id}/ws", s.handleViewerWS).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, _ := route.GetPathTemplate()
		methods, _ := route.GetMethods()
		s.logger.Info("route registered", zap.String("path", pathTemplate), zap.Strings("methods", methods))
		return nil
	})
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var cfg runconfig.RunConfig
	if err := jsonx.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	runID, err := s.runs.Start(cfg)
	if err != nil {
		s.logger.Error("failed to start run", zap.Error(err))
		http.Error(w, "failed to start run: "+SanitizeError(err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	jsonx.NewEncoder(w).Encode(map[string]string{"run_id": runID})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	run, ok := s.runs.Get(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	jsonx.NewEncoder(w).Encode(run)
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	if !s.runs.Cancel(runID) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	limit := 20

	results, ok, err := s.runs.FuzzySearch(r.Context(), runID, term, limit)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("fuzzy search failed", zap.Error(err))
		http.Error(w, "search failed: "+SanitizeError(err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	jsonx.NewEncoder(w).Encode(results)
}

func (s *Server) handleViewerWS(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	s.hub.ServeViewer(w, r, runID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	jsonx.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
