// Package httpapi exposes the flueprint pipeline over HTTP: transcript
// interpretation, recommendation scoring, session persistence, and the
// section schema, plus health and metrics endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flueprint/flueprint/internal/auth"
	"github.com/flueprint/flueprint/internal/gateway"
	"github.com/flueprint/flueprint/internal/health"
	"github.com/flueprint/flueprint/internal/observe"
	"github.com/flueprint/flueprint/internal/recommend"
	"github.com/flueprint/flueprint/internal/schema"
	"github.com/flueprint/flueprint/pkg/provider/embeddings"
	"github.com/flueprint/flueprint/pkg/store"
)

// Deps holds everything the API surface needs. Gateway, Engine, and Schema
// are required; the rest degrade gracefully when nil.
type Deps struct {
	Gateway *gateway.Gateway
	Engine  *recommend.Engine
	Schema  *schema.Store

	// Sessions is the session snapshot store. When nil, the session routes
	// respond with a server_error explaining that persistence is disabled.
	Sessions store.SessionStore

	// References is the reference snippet store. When nil, the reference
	// routes respond with a server_error.
	References store.ReferenceStore

	// Embedder enables semantic indexing and search of reference snippets.
	Embedder embeddings.Provider

	// Auth guards the /api/v1 routes. When nil, the routes are open.
	Auth *auth.Service

	// Health serves /healthz and /readyz. When nil, both report bare liveness.
	Health *health.Handler

	// MetricsHandler serves GET /metrics (typically promhttp.Handler()).
	// When nil, the route is not mounted.
	MetricsHandler http.Handler

	Metrics *observe.Metrics
	Logger  *slog.Logger
}

// Server is the HTTP API for the flueprint pipeline.
type Server struct {
	gateway    *gateway.Gateway
	engine     *recommend.Engine
	schema     *schema.Store
	sessions   store.SessionStore
	references store.ReferenceStore
	embedder   embeddings.Provider
	metrics    *observe.Metrics
	logger     *slog.Logger
	router     http.Handler
}

// New assembles the router and returns the ready-to-serve Server.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}

	s := &Server{
		gateway:    deps.Gateway,
		engine:     deps.Engine,
		schema:     deps.Schema,
		sessions:   deps.Sessions,
		references: deps.References,
		embedder:   deps.Embedder,
		metrics:    metrics,
		logger:     logger,
	}

	r := mux.NewRouter()
	r.Use(observe.Middleware(metrics))

	healthHandler := deps.Health
	if healthHandler == nil {
		healthHandler = health.New()
	}
	r.HandleFunc("/healthz", healthHandler.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", healthHandler.Readyz).Methods(http.MethodGet)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	if deps.Auth != nil {
		api.Use(deps.Auth.Middleware)
	}
	api.HandleFunc("/notes", s.handleNotes).Methods(http.MethodPost)
	api.HandleFunc("/recommendations", s.handleRecommendations).Methods(http.MethodPost)
	api.HandleFunc("/schema", s.handleSchema).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{name}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{name}", s.handlePutSession).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{name}", s.handleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/references", s.handleAddReference).Methods(http.MethodPost)
	api.HandleFunc("/references", s.handleSearchReferences).Methods(http.MethodGet)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
