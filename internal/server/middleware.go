package server

import (
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/chatglass/chatglass/pkg/errors"
	"github.com/chatglass/chatglass/pkg/observability"
)

// requestLogger logs one line per request with method, path, status,
// size and duration, tagged with the chi request ID. Registered
// observability hooks see the same request and response events.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)

		s.logger.Info("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.Round(time.Millisecond))
	})
}

// recoverer turns handler panics into 500 responses instead of torn
// connections, logging the stack for debugging.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					"id", middleware.GetReqID(r.Context()),
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()))
				s.writeError(w, errors.New(errors.ErrCodeInternal, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimit enforces the per-client token bucket. Clients are keyed by
// remote IP; a denied request gets a 429 with Retry-After.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !s.limiter.allow(key) {
			s.logger.Warn("rate limited", "client", key, "path", r.URL.Path)
			s.writeError(w, &errors.RateLimitedError{RetryAfter: 1})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the remote IP, dropping the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// clientLimiter holds one token bucket per client. Buckets idle for
// several minutes are swept so the map does not grow with every IP
// that ever connected.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*client

	limit rate.Limit
	burst int

	stopCh   chan struct{}
	stopOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	sweepInterval = time.Minute
	clientIdleTTL = 3 * time.Minute
)

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	l := &clientLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
	go l.sweep()
	return l
}

// allow reports whether a request from key may proceed now.
func (l *clientLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (l *clientLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-clientIdleTTL)
			l.mu.Lock()
			for key, c := range l.clients {
				if c.lastSeen.Before(cutoff) {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *clientLimiter) stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
