package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/AmeyaShriwas/chatappbackend/internal/api"
	"github.com/AmeyaShriwas/chatappbackend/internal/auth"
	"github.com/AmeyaShriwas/chatappbackend/internal/chat"
	"github.com/AmeyaShriwas/chatappbackend/internal/config"
	"github.com/AmeyaShriwas/chatappbackend/internal/presence"
	"github.com/AmeyaShriwas/chatappbackend/internal/ws"
)

// schemaStore is what both store flavors provide beyond chat.Store.
type schemaStore interface {
	chat.Store
	EnsureSchema(ctx context.Context) error
	DB() *sqlx.DB
}

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	var (
		st  schemaStore
		err error
	)
	if cfg.DatabaseURL != "" {
		st, err = chat.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil { logger.Fatal().Err(err).Msg("postgres connection failed") }
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		st, err = chat.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil { logger.Fatal().Err(err).Msg("sqlite open failed") }
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite store")
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("schema setup failed")
	}

	var tracker *presence.Tracker
	if cfg.RedisURL != "" {
		tracker, err = presence.New(ctx, cfg.RedisURL)
		if err != nil { logger.Fatal().Err(err).Msg("redis connection failed") }
		defer tracker.Close()
		logger.Info().Msg("connected to Redis")
	}

	jwt := auth.NewJWT(cfg.JWTSecret)
	hub := ws.NewHub(logger)
	relay := ws.NewRelay(logger, st, hub, tracker, cfg.StoreTimeout)

	router := api.NewRouter(api.Deps{
		Log:     logger,
		Cfg:     cfg,
		Store:   st,
		DB:      st.DB(),
		Tracker: tracker,
		Relay:   relay,
		JWT:     jwt,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("env", cfg.Env).
			Msg("starting chat relay")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
