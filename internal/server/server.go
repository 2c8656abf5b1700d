package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"synaptic/internal/engine"
	"synaptic/internal/store"
)

// Server is the synaptic HTTP API server: the surface the conversational
// orchestrator and operator tooling talk to.
type Server struct {
	db       *store.DB
	eng      *engine.Engine
	wanderer *engine.Wanderer
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a Server. wanderer may be nil when the background loop is
// disabled.
func New(db *store.DB, eng *engine.Engine, wanderer *engine.Wanderer, version string) *Server {
	s := &Server{
		db:       db,
		eng:      eng,
		wanderer: wanderer,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/activate", s.handleActivate)
		r.Post("/learn", s.handleLearn)
		r.Post("/respond", s.handleRespond)
		r.Post("/feedback", s.handleFeedback)
		r.Post("/decay", s.handleDecay)

		r.Get("/stats", s.handleStats)
		r.Get("/chemistry", s.handleChemistry)
		r.Get("/connections/{label}", s.handleConnections)
		r.Get("/thoughts", s.handleThoughts)
		r.Get("/activations", s.handleActivations)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	wandering := false
	if s.wanderer != nil {
		wandering = s.wanderer.Running()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"uptime":    time.Since(s.started).Seconds(),
		"db":        dbOK,
		"db_path":   s.db.Path,
		"wandering": wandering,
	})
}

// touch pushes the wander loop's idle window back on interactive calls.
func (s *Server) touch() {
	if s.wanderer != nil {
		s.wanderer.Touch()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
