package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"
)

// BuildInfo identifies the running binary in health output and metrics.
type BuildInfo struct {
	Version string
	Commit  string
}

// Config carries everything the server needs. Users, Files, and Blob are
// required; DB is optional and only feeds the health probe and the audit
// trail when the Postgres stores are in use.
type Config struct {
	Addr       string // e.g. ":8080"
	BaseURL    string // external base URL for verification links
	Build      BuildInfo
	SessionTTL time.Duration

	Users UserStore
	Files FileStore
	Blob  BlobStore
	Email *EmailService

	DB *sql.DB
}

// Server owns the HTTP listener and the per-process registries.
type Server struct {
	cfg        Config
	httpServer *http.Server
	sessions   *SessionRegistry
	lockout    *AccountLockout
	audit      *auditRecorder
}

// New wires routes, middleware, and registries. It does not listen yet.
func New(cfg Config) *Server {
	if cfg.Email == nil {
		cfg.Email = NewEmailService(EmailConfig{})
	}

	s := &Server{
		cfg:      cfg,
		sessions: NewSessionRegistry(cfg.SessionTTL),
		lockout:  NewAccountLockout(5, 15*time.Minute, 10*time.Minute),
		audit:    newAuditRecorder(cfg.DB),
	}

	// Credential endpoints get their own tighter limiter.
	loginLimiter := newRateLimiter(20, time.Minute)

	mux := http.NewServeMux()

	// Operator surface
	mux.Handle("/ops/login", loginLimiter.middleware(s.loginHandler(RoleOperator)))
	mux.Handle("/ops/logout", s.logoutHandler())
	mux.Handle("/ops/upload", s.requireRole(RoleOperator, s.uploadHandler()))

	// Client surface
	mux.Handle("/client/signup", loginLimiter.middleware(s.signupHandler()))
	mux.Handle("/client/verify-email/", s.verifyEmailHandler())
	mux.Handle("/client/login", loginLimiter.middleware(s.loginHandler(RoleClient)))
	mux.Handle("/client/logout", s.logoutHandler())
	mux.Handle("/client/files", s.requireRole(RoleClient, s.listFilesHandler()))

	// Operational surface
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/ready", s.HandleReady)
	mux.HandleFunc("/live", s.HandleLive)
	mux.Handle("/metrics", NewPrometheusExporter(cfg.Build.Version, s.sessions.Active).Handler())

	// Wrap middleware: requestID -> logging -> security headers -> mux
	var handler http.Handler = mux
	handler = securityHeadersMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the full middleware chain, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Sessions exposes the session registry, mainly for tests and metrics.
func (s *Server) Sessions() *SessionRegistry {
	return s.sessions
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
