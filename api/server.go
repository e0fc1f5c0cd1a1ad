package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wricardo/grid-client/game/intent"
	"github.com/wricardo/grid-client/game/service"
)

// ViewSource exposes the client's current state
type ViewSource interface {
	View() service.View
}

// KeyPresser injects key presses into the client
type KeyPresser interface {
	Press(key string)
}

// MetricsSource exposes counters by name
type MetricsSource interface {
	Snapshot() map[string]any
}

// Server represents the local inspection API
type Server struct {
	views   ViewSource
	keys    KeyPresser
	metrics MetricsSource
	router  *mux.Router
}

// NewServer creates a new API server. keys may be nil when the client has
// no keyboard dispatch; key injection then answers 409.
func NewServer(views ViewSource, keys KeyPresser, metrics MetricsSource) *Server {
	s := &Server{
		views:   views,
		keys:    keys,
		metrics: metrics,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/metrics", s.handleGetMetrics).Methods("GET")
	api.HandleFunc("/keys", s.handleListKeys).Methods("GET")
	api.HandleFunc("/keys/{key}", s.handlePressKey).Methods("POST")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.views.View())
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusOK, map[string]any{})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys := intent.BoundKeys()
	out := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		in, _ := intent.Lookup(k)
		out = append(out, map[string]any{
			"key":       k,
			"direction": intent.Direction(in),
			"dx":        in.DX,
			"dy":        in.DY,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handlePressKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	if s.keys == nil {
		respondError(w, http.StatusConflict, "key dispatch is not available in this mode")
		return
	}
	if _, ok := intent.Lookup(key); !ok {
		respondError(w, http.StatusBadRequest, "unbound key: "+key)
		return
	}

	s.keys.Press(key)
	respondJSON(w, http.StatusAccepted, map[string]string{"key": key, "status": "dispatched"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	v := s.views.View()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"state":       v.State,
		"stream_open": v.StreamOpen,
		"has_player":  v.Identity.IsSet(),
	})
}
