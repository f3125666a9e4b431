package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caslex/caslex/internal/api"
	"github.com/caslex/caslex/internal/config"
	"github.com/caslex/caslex/internal/render"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Browser rendering is optional; the parse and extract endpoints work
	// without it.
	var session *render.Session
	if cfg.BrowserEnabled {
		session = render.NewSession(cfg.BrowserConfig, log)
		if err := session.Start(ctx); err != nil {
			log.Error("browser session failed to start", "error", err)
			os.Exit(1)
		}
	}

	srv := api.NewServer(session, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if session != nil {
			session.Stop()
		}
	}()

	log.Info("starting caslex", "port", cfg.Port, "browser", cfg.BrowserEnabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
