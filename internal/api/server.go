// Package api implements the daemon's optional debug HTTP surface: a
// small, read-only set of endpoints (liveness, a state snapshot, Prometheus
// metrics, and a websocket feed for the dashboard) bound to loopback by
// default and disabled unless Debug.Enabled is set. It never accepts a
// mutating request — every state change goes through the control socket
// in internal/socket, the same way the teacher kept the two concerns
// ("can I see what's happening" vs "can I change what's happening")
// behind different transports.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apimiddleware "github.com/pueued/pueue-go/internal/api/middleware"
	"github.com/pueued/pueue-go/internal/api/websocket"
	"github.com/pueued/pueue-go/internal/config"
	"github.com/pueued/pueue-go/internal/events"
	"github.com/pueued/pueue-go/internal/query"
	"github.com/pueued/pueue-go/internal/store"
)

// Server is the debug HTTP surface.
type Server struct {
	router    *chi.Mux
	store     *store.Store
	config    *config.DebugConfig
	wsHub     *websocket.Hub
	wsHandler *websocket.Handler
}

func NewServer(cfg *config.DebugConfig, st *store.Store, bus *events.Bus) *Server {
	wsHub := websocket.NewHub(bus)

	s := &Server{
		router:    chi.NewRouter(),
		store:     st,
		config:    cfg,
		wsHub:     wsHub,
		wsHandler: websocket.NewHandler(wsHub),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Heartbeat("/debug/health"))

	if s.config.RateLimitRPS > 0 {
		s.router.Use(apimiddleware.DebugRateLimit(s.config.RateLimitRPS))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/debug/state", s.handleState)
	s.router.Get("/debug/ws", s.wsHandler.ServeWS)
	s.router.Handle("/metrics", promhttp.Handler())
}

// handleState returns every task, optionally filtered/ordered/limited by
// the same query fragments the control socket's Status request accepts
// (?q=status=running&q=order_by+status).
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	tasks := s.store.Tasks()

	if fragments := r.URL.Query()["q"]; len(fragments) > 0 {
		plan, err := query.Parse(fragments)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tasks = query.Apply(tasks, plan)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tasks)
}

// Start starts the dashboard hub's event-bus subscription.
func (s *Server) Start(ctx context.Context) {
	s.wsHub.Run()
	go func() {
		<-ctx.Done()
		s.wsHub.Stop()
	}()
}

// Router returns the chi router for use with http.Serve.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the debug HTTP server until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
