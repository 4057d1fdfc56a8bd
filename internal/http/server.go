// Package http serves the JSON API consumed by the dashboard UI.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pftrack/internal/auth"
	"pftrack/internal/cache"
	"pftrack/internal/core"
	"pftrack/internal/ledger"
	"pftrack/internal/log"
	"pftrack/internal/store"
)

type Server struct {
	http.Server
	gate   *auth.Gate
	ledger *ledger.Service
	store  *store.Store

	rateLimiter *rateLimiter

	// Per-user transaction list cache, invalidated on every write.
	listCache    *cache.LRU[[]core.Transaction]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, gate *auth.Gate, svc *ledger.Service, st *store.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		gate:         gate,
		ledger:       svc,
		store:        st,
		rateLimiter:  newRateLimiter(),
		listCache:    cache.NewLRU[[]core.Transaction](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.listCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("POST /api/signup", s.withMiddleware(s.handleSignup))
	mux.HandleFunc("POST /api/logout", s.withMiddleware(s.handleLogout))
	mux.HandleFunc("GET /api/session", s.withMiddleware(s.handleSession))

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleSaveTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transactions/seed", s.withMiddleware(s.handleSeed))
	mux.HandleFunc("GET /api/transactions/export", s.withMiddleware(s.handleExport))

	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.handleDashboard))

	mux.HandleFunc("GET /api/theme", s.withMiddleware(s.handleGetTheme))
	mux.HandleFunc("PUT /api/theme", s.withMiddleware(s.handleSetTheme))

	return s
}

// withMiddleware adds security headers, rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, ip,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests only.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(ip) {
			slog.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, ip, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, ip)
	}
}

// listTransactions reads the user's list through the cache.
func (s *Server) listTransactions(ctx context.Context, userID string) []core.Transaction {
	if txs, found := s.listCache.Get(userID); found {
		slog.DebugContext(ctx, "List cache hit", log.FieldUserID, userID, "count", len(txs))
		result := make([]core.Transaction, len(txs))
		copy(result, txs)
		return result
	}
	txs := s.ledger.List(ctx, userID)
	s.listCache.Set(userID, txs)
	return txs
}

func (s *Server) invalidateList(userID string) {
	s.listCache.Delete(userID)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
