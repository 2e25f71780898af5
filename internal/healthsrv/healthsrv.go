// Package healthsrv provides the small /health, /ready, /metrics HTTP
// surface shared by cmd/collector and cmd/ruleloader (spec §6), grounded on
// the teacher's internal/management package: a dedicated mux, explicit
// ReadHeaderTimeout, and an optional bearer-token authMiddleware in front of
// everything but the liveness probes.
package healthsrv

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meshcap/sanitizer-pipeline/internal/logger"
)

// Checker reports whether the process considers itself healthy. Both
// implementations (collector.Pipeline and ruleloader.Loader) flip this to
// false on a failed Queue operation; mock-server errors do not affect it
// (spec §6:
// "/health... 503 when the Queue adapter is in retry exhaustion").
type Checker interface {
	Healthy() bool
}

// Server is the /health, /ready, /metrics HTTP surface.
type Server struct {
	addr    string
	token   string
	checker Checker
	log     *logger.Logger
}

// New returns a Server bound to addr (e.g. ":8081"). token, if non-empty,
// gates every route except /health and /ready behind a Bearer check —
// liveness probes must never require credentials.
func New(addr, token string, checker Checker, log *logger.Logger) *Server {
	return &Server{addr: addr, token: token, checker: checker, log: log}
}

// Handler builds the mux: /health and /ready are always open; /metrics sits
// behind authMiddleware when a token is configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", s.authMiddleware(promhttp.Handler()))
	return mux
}

// ListenAndServe starts the HTTP server and blocks.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.checker != nil && !s.checker.Healthy() {
		http.Error(w, `{"status":"degraded"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

// authMiddleware checks for a valid Bearer token if one is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(auth[len(prefix):])), []byte(s.token)) != 1 {
			if s.log != nil {
				s.log.Warnf("auth", "unauthorized access attempt from %s to %s", r.RemoteAddr, r.URL.Path)
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
