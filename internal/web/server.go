// Package web serves the arrow-keys status page and its JSON twin.
package web

import (
	"context"
	"net/http"

	"github.com/sweeney/arrow-keys/internal/poller"
	"github.com/sweeney/arrow-keys/internal/status"
)

// Server renders tracker snapshots over HTTP. It only ever reads the tracker.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New binds the routes to addr. Nothing listens until ListenAndServe.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /index.html", s.handleIndex)
	mux.HandleFunc("GET /index.json", s.handleJSON)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler exposes the route table, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks until Shutdown, then returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}

// handleHealth is 200 once the poll loop runs and 503 with the state before.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.tracker.Snapshot().PollerState
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if state != poller.StatePolling {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(string(state) + "\n"))
		return
	}
	w.Write([]byte("ok\n"))
}
