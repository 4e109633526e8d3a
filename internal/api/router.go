package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AmeyaShriwas/chatappbackend/internal/auth"
	"github.com/AmeyaShriwas/chatappbackend/internal/chat"
	"github.com/AmeyaShriwas/chatappbackend/internal/config"
	"github.com/AmeyaShriwas/chatappbackend/internal/history"
	"github.com/AmeyaShriwas/chatappbackend/internal/httputil"
	"github.com/AmeyaShriwas/chatappbackend/internal/presence"
	"github.com/AmeyaShriwas/chatappbackend/internal/ws"
)

// Deps collects everything the router wires together.
type Deps struct {
	Log     zerolog.Logger
	Cfg     *config.Config
	Store   chat.Store
	DB      *sqlx.DB
	Tracker *presence.Tracker
	Relay   *ws.Relay
	JWT     *auth.JWT
}

// NewRouter creates and configures the HTTP router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(httputil.Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(httputil.Logger(d.Log))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", handleHealth(d.Store, d.Tracker))

	r.Method(http.MethodPost, "/api/auth/login", httputil.JSONHandler(func(w http.ResponseWriter, r *http.Request) error {
		return auth.HandleLogin(d.DB, d.JWT, w, r)
	}))

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(httputil.JWTAuth(d.JWT))
		r.Use(httputil.RateLimit(d.Cfg.RateLimitPerMinute, time.Minute))

		r.Method(http.MethodGet, "/api/users/me", httputil.JSONHandler(func(w http.ResponseWriter, r *http.Request) error {
			return auth.HandleMe(d.DB, httputil.ClaimsFrom(r.Context()), w, r)
		}))
		r.Method(http.MethodGet, "/api/history", httputil.JSONHandler(func(w http.ResponseWriter, r *http.Request) error {
			return history.HandleGet(d.Store, d.Cfg.StoreTimeout, w, r)
		}))
		r.Method(http.MethodGet, "/api/presence/{id}", httputil.JSONHandler(func(w http.ResponseWriter, r *http.Request) error {
			return presence.HandleGet(d.Tracker, w, r)
		}))
	})

	// Live channel; the handshake carries its own token.
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.Handle(d.Relay, d.JWT, w, r)
	})

	return r
}
