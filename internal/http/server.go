// Package http serves the debt tracker web UI: an access-gated owner view
// over the debt collection and an ungated read-only share view per debt.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"pagos/internal/cache"
	applog "pagos/internal/log"
	"pagos/internal/services"
	appweb "pagos/web"
)

// expiredCleaner is satisfied by cache backends that need periodic sweeps.
type expiredCleaner interface {
	CleanExpired() int
}

type Server struct {
	http.Server
	templates   *template.Template
	service     *services.DebtService
	snapshot    *services.SnapshotStore
	shareCache  cache.Store
	rateLimiter *rateLimiter
	structLog   *applog.StructuredLogger

	accessPIN     string
	sessionSecret []byte

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Options carries the dependencies for NewServer.
type Options struct {
	Addr          string
	Service       *services.DebtService
	Snapshot      *services.SnapshotStore
	ShareCache    cache.Store
	AccessPIN     string
	SessionSecret string
	Logger        *applog.Logger
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	router := mux.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: applog.Middleware(logger)(router),
		},
		service:          opts.Service,
		snapshot:         opts.Snapshot,
		shareCache:       opts.ShareCache,
		rateLimiter:      newRateLimiter(),
		structLog:        applog.NewStructuredLogger(logger),
		accessPIN:        opts.AccessPIN,
		sessionSecret:    []byte(opts.SessionSecret),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		router.PathPrefix("/static/").Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	router.HandleFunc("/login", s.withSecurityHeaders(s.handleLoginForm)).Methods(http.MethodGet)
	router.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin)).Methods(http.MethodPost)

	// Share view stays outside the access gate: the link is the credential.
	router.HandleFunc("/share/{id}", s.withSecurityHeaders(s.handleShareView)).Methods(http.MethodGet)

	router.HandleFunc("/", s.withSecurityHeaders(s.requireSession(s.handleIndex))).Methods(http.MethodGet)
	router.HandleFunc("/debts", s.withSecurityHeaders(s.requireSession(s.handleCreateDebt))).Methods(http.MethodPost)
	router.HandleFunc("/debts/{id}", s.withSecurityHeaders(s.requireSession(s.handleDebtDetail))).Methods(http.MethodGet)
	router.HandleFunc("/debts/{id}/delete", s.withSecurityHeaders(s.requireSession(s.handleDeleteDebt))).Methods(http.MethodPost)
	router.HandleFunc("/debts/{id}/payments", s.withSecurityHeaders(s.requireSession(s.handleSavePayment))).Methods(http.MethodPost)
	router.HandleFunc("/debts/{id}/payments/{pid}/delete", s.withSecurityHeaders(s.requireSession(s.handleDeletePayment))).Methods(http.MethodPost)
	router.HandleFunc("/debts/{id}/share-link", s.withSecurityHeaders(s.requireSessionAPI(s.handleShareLink))).Methods(http.MethodGet)

	router.HandleFunc("/events", s.requireSessionAPI(s.handleEvents)).Methods(http.MethodGet)
	router.HandleFunc("/api/export", s.withSecurityHeaders(s.requireSessionAPI(s.handleExport))).Methods(http.MethodGet)
	router.HandleFunc("/api/import", s.withSecurityHeaders(s.requireSessionAPI(s.handleImport))).Methods(http.MethodPost)

	return s
}

// startCacheCleanup runs periodic cleanup for the share view cache.
func (s *Server) startCacheCleanup() {
	cleaner, ok := s.shareCache.(expiredCleaner)
	if !ok {
		return
	}

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := cleaner.CleanExpired(); removed > 0 {
				slog.Debug("Share cache cleanup completed", "entries_removed", removed)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientAddr(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.structLog.LogHTTPStart(ctx, r, clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// clientAddr extracts the client IP, honoring proxy headers.
func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the underlying writer when it supports streaming.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
