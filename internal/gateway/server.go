// Package gateway exposes the qualification engine over HTTP and WebSocket:
// the chat widget endpoints, the quote wizard, and the leads API.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/asjidimtiaz/leadqual/internal/config"
	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/engine"
	"github.com/asjidimtiaz/leadqual/internal/hooks"
	"github.com/asjidimtiaz/leadqual/internal/logging"
	"github.com/asjidimtiaz/leadqual/internal/version"
)

// LeadLister reads back recent leads for the authenticated leads API.
type LeadLister interface {
	List(ctx context.Context, limit int) ([]domain.Lead, error)
}

// Server is the leadqual HTTP + WebSocket server.
type Server struct {
	cfg     config.Config
	log     *logging.Logger
	manager *engine.Manager
	rules   engine.RuleSet
	version string

	// Optional collaborators.
	crm   engine.LeadRecorder
	leads LeadLister
	hooks *hooks.Manager

	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithRules overrides the extraction rule vocabulary used by the quote wizard.
func WithRules(rs engine.RuleSet) ServerOption {
	return func(s *Server) { s.rules = rs }
}

// WithCRM sets the lead recorder used by the quote wizard endpoint.
func WithCRM(crm engine.LeadRecorder) ServerOption {
	return func(s *Server) { s.crm = crm }
}

// WithLeadLister enables the GET /api/leads endpoint.
func WithLeadLister(l LeadLister) ServerOption {
	return func(s *Server) { s.leads = l }
}

// WithHooks sets the hook manager for lifecycle events.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) { s.hooks = hm }
}

// New creates a new server.
func New(cfg config.Config, log *logging.Logger, manager *engine.Manager, opts ...ServerOption) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log.Sub("gateway"),
		manager: manager,
		rules:   engine.DefaultRules,
		version: version.Version,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.Server.AllowedOrigins),
		},
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin
// headers. Requests without an Origin header (non-browser clients) are
// allowed; browser requests must match a configured origin.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Handler builds the full HTTP handler with routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.Server.AllowedOrigins)
}

// Start begins listening. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Server)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.Server.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.Server.TLS.CertPath, s.cfg.Server.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Server.Bind != "loopback" {
		s.log.Warn().Msg("TLS is not enabled on a non-loopback bind")
	}

	s.startedAt = time.Now()

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Server.Bind).
		Str("version", s.version).
		Msg("server ready")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventServerStart, map[string]any{
			"addr": ln.Addr().String(),
		})
	}

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down server")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventServerStop, nil)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
