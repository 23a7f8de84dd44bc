// pattern: Imperative Shell

package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"agentdesk/internal/gitstate"
	"agentdesk/internal/logging"
	"agentdesk/internal/watcher"
	"agentdesk/internal/workspace"
)

// Server exposes the workspace access layer and change-aggregation engine
// over a local JSON API.
type Server struct {
	httpServer *http.Server
	resolver   *workspace.Resolver
	engine     *gitstate.Engine
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	events     *eventBroker
}

// Config holds web server configuration.
type Config struct {
	Bind string
	Port int
}

// New creates a web server. logProvider must implement
// logging.LoggerProvider (both *logging.Manager and *logging.TestLogManager
// satisfy this interface).
func New(cfg Config, resolver *workspace.Resolver, engine *gitstate.Engine, logProvider logging.LoggerProvider) *Server {
	logger := logProvider.For("web")
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		resolver: resolver,
		engine:   engine,
		logger:   logger,
		addr:     addr,
		events:   newEventBroker(),
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/workspace/files", s.handleListFiles)
	mux.HandleFunc("GET /api/workspace/file", s.handleReadFile)
	mux.HandleFunc("POST /api/workspace/file", s.handleWriteFile)
	mux.HandleFunc("GET /api/workspace/watch", s.HandleWatch)
	mux.HandleFunc("GET /api/git/status", s.handleGitStatus)
	mux.HandleFunc("GET /api/git/diff", s.handleGitDiff)

	return s
}

// NotifyChange publishes a workspace change to all event subscribers.
// Wired to the filesystem watcher by the caller.
func (s *Server) NotifyChange(ev watcher.Event) {
	s.events.Notify(ev)
}

// Listen binds the server to its configured address and returns the
// listener. Call Serve() after Listen() to start accepting connections.
// The two-step split lets callers obtain the actual bound address
// (useful for ephemeral port 0 in tests) before the server blocks on Serve().
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on the listener. Blocks until the server stops.
// Must call Listen() first.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Start is a convenience that calls Listen() then Serve(). Blocks until the
// server stops.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Addr returns the address the server is listening on.
// Only valid after Listen() or Start() has been called.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
