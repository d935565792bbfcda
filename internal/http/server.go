// Package http exposes the Leofy REST API: authentication, onboarding,
// transactions, credit cards, and statistics.
package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/leoperezgr/Leofy/internal/auth"
	"github.com/leoperezgr/Leofy/internal/httperr"
	"github.com/leoperezgr/Leofy/internal/middleware/ratelimit"
	"github.com/leoperezgr/Leofy/internal/middleware/security"
	"github.com/leoperezgr/Leofy/internal/middleware/trace"
	"github.com/leoperezgr/Leofy/internal/service"
)

type Server struct {
	http.Server

	tokens  *auth.TokenManager
	authSvc *service.AuthService
	finSvc  *service.FinanceService

	authLimiter  *ratelimit.Limiter
	shutdownOnce sync.Once
}

// Options carries the collaborators the server needs.
type Options struct {
	Addr           string
	Tokens         *auth.TokenManager
	Auth           *service.AuthService
	Finance        *service.FinanceService
	AllowedOrigins []string
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		tokens:  opts.Tokens,
		authSvc: opts.Auth,
		finSvc:  opts.Finance,
		// Credential endpoints get a tighter limit than the default.
		authLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 20}),
	}

	mux.Handle("GET /health", http.HandlerFunc(handleHealth))

	mux.Handle("POST /api/auth/register", s.limited(handle(s.handleRegister)))
	mux.Handle("POST /api/auth/login", s.limited(handle(s.handleLogin)))
	mux.Handle("GET /api/auth/me", handle(s.authenticated(s.handleGetProfile)))
	mux.Handle("PUT /api/auth/me", handle(s.authenticated(s.handleUpdateProfile)))

	mux.Handle("POST /api/onboarding/complete", handle(s.authenticated(s.handleCompleteOnboarding)))

	mux.Handle("GET /api/transactions", handle(s.authenticated(s.handleListTransactions)))
	mux.Handle("POST /api/transactions", handle(s.authenticated(s.handleCreateTransaction)))

	mux.Handle("GET /api/cards", handle(s.authenticated(s.handleListCards)))
	mux.Handle("POST /api/cards", handle(s.authenticated(s.handleCreateCard)))

	mux.Handle("GET /api/stats/summary", handle(s.authenticated(s.handleStatsSummary)))
	mux.Handle("GET /api/stats/categories", handle(s.authenticated(s.handleStatsCategories)))
	mux.Handle("GET /api/stats/dashboard", handle(s.authenticated(s.handleStatsDashboard)))

	secCfg := security.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		secCfg.AllowedOrigins = opts.AllowedOrigins
	}

	var root http.Handler = mux
	root = trace.Middleware(root)
	root = security.Middleware(secCfg)(root)

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: root,
	}
	return s
}

// limited applies the auth-endpoint rate limiter.
func (s *Server) limited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.Allow(trace.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, &httperr.Error{
				Code:    http.StatusTooManyRequests,
				Message: "rate limit exceeded, try again later",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the HTTP server and the limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.authLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
