package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/AmeyaShriwas/chatappbackend/internal/auth"
	"github.com/AmeyaShriwas/chatappbackend/internal/chat"
	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
	"github.com/AmeyaShriwas/chatappbackend/internal/metrics"
)

// JSONHandler wraps handlers that return error and maps the error taxonomy
// onto status codes: bad input 400/422, non-participant 403, missing record
// 404, store timeout 503, anything else 500.

type JSONHandler func(http.ResponseWriter, *http.Request) error

func (h JSONHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := h(w, r)
	if err == nil { return }
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, identity.ErrInvalidID), errors.Is(err, identity.ErrSelfPair):
		status = http.StatusBadRequest
	case errors.Is(err, identity.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, chat.ErrEmptyBody), errors.Is(err, chat.ErrBodyTooLarge):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, chat.ErrNoConversation):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

type Middleware func(http.Handler) http.Handler

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFrom returns the authenticated claims placed by JWTAuth, or nil.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// WithClaims attaches claims to the context the way JWTAuth does.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// JWTAuth protects /api/*

func JWTAuth(jwt *auth.JWT) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") { http.Error(w, "missing bearer", http.StatusUnauthorized); return }
			tok := strings.TrimPrefix(h, "Bearer ")
			claims, err := jwt.Parse(tok)
			if err != nil { http.Error(w, "invalid token", http.StatusUnauthorized); return }
			r = r.WithContext(WithClaims(r.Context(), claims))
			next.ServeHTTP(w, r)
		})
	}
}

// Logger logs one line per request through zerolog.

func Logger(logger zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Dur("latency", time.Since(start)).
					Str("request_id", chimw.GetReqID(r.Context())).
					Str("remote_addr", r.RemoteAddr).
					Msg("request completed")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Metrics records request counts and latency per method/path.

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// Simple IP rate limit

type tokenBucket struct {
	mu     sync.Mutex
	tokens int
	last   time.Time
}

func RateLimit(n int, per time.Duration) Middleware {
	buckets := make(map[string]*tokenBucket)
	var mu sync.Mutex
	interval := per / time.Duration(n)
	if interval <= 0 { interval = time.Nanosecond }
	refill := func(b *tokenBucket) {
		elapsed := time.Since(b.last)
		add := int(elapsed / interval)
		if add > 0 { b.tokens = min(n, b.tokens+add); b.last = b.last.Add(time.Duration(add) * interval) }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			mu.Lock()
			b := buckets[ip]
			if b == nil { b = &tokenBucket{tokens: n, last: time.Now()}; buckets[ip] = b }
			b.mu.Lock(); mu.Unlock()
			refill(b)
			if b.tokens <= 0 { b.mu.Unlock(); http.Error(w, "rate limit", http.StatusTooManyRequests); return }
			b.tokens--; b.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}
