// Package main is the entry point for the Dive Atlas backend.
// Its sole responsibility is wiring dependencies together and starting the
// server: pick the persistence adapter (remote Postgres when configured,
// on-device fallback otherwise — decided once, here), load the initial
// catalog projection, and serve the JSON API. No business logic belongs
// here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joydiver/dive-atlas/backend/internal/catalog"
	"github.com/joydiver/dive-atlas/backend/internal/config"
	"github.com/joydiver/dive-atlas/backend/internal/handler"
	"github.com/joydiver/dive-atlas/backend/internal/middleware"
	"github.com/joydiver/dive-atlas/backend/internal/persist"
	"github.com/joydiver/dive-atlas/backend/internal/status"
	"github.com/joydiver/dive-atlas/backend/internal/store"
)

// maxBodySize caps request bodies. Notes are the largest payload; 1 MiB is
// generous.
const maxBodySize = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog JSON handler writes machine-readable output suitable for log
	// aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Persistence adapter ----------------------------------------------
	// Remote vs local is chosen once at startup; runtime remote failures
	// fall back to seed data inside the catalog service, never by swapping
	// the adapter mid-session.
	var adapter persist.Adapter
	if cfg.RemoteConfigured() {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		slog.Info("database connection established", "mode", "remote")
		adapter = persist.NewRemote(pool, cfg.UserID)
	} else {
		slog.Info("no database configured, using local fallback", "state_dir", cfg.StateDir)
		adapter = persist.NewLocal(cfg.StateDir, logger)
	}

	// --- State + services -------------------------------------------------
	st := store.New()
	catalogSvc := catalog.NewService(adapter, logger)
	statusSvc := status.NewService(st, adapter, logger, status.DefaultNotesDebounce)
	defer statusSvc.Close() // flush pending notes on shutdown

	st.SetSites(catalogSvc.Load(context.Background()))
	slog.Info("catalog loaded", "sites", len(st.Sites()))

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS →
	// body-size cap. RequestID generates a trace ID per request; Recoverer
	// turns panics into HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodySize))

	srv := handler.NewServer(st, catalogSvc, statusSvc)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for an OS signal, then give in-flight
	// requests up to 15 seconds to complete.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
