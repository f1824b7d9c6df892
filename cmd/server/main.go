package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/doclink/internal/api"
	"github.com/dgallion1/doclink/internal/autolink"
	"github.com/dgallion1/doclink/internal/config"
	"github.com/dgallion1/doclink/internal/linkify"
	"github.com/dgallion1/doclink/internal/metrics"
	"github.com/dgallion1/doclink/internal/parser"
	"github.com/dgallion1/doclink/internal/pipeline"
	"github.com/dgallion1/doclink/internal/render"
	"github.com/dgallion1/doclink/internal/session"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var matchers []autolink.Matcher
	if cfg.MatchersFile != "" {
		var err error
		matchers, err = autolink.LoadMatchersFile(cfg.MatchersFile)
		if err != nil {
			log.Error("load matchers", "file", cfg.MatchersFile, "error", err)
			os.Exit(1)
		}
		log.Info("loaded matchers", "file", cfg.MatchersFile, "count", len(matchers))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	linkOpts := linkify.Options{
		Matchers:  matchers,
		MaxPasses: cfg.MaxTransformPasses,
		Logger:    log,
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, pipeline.Options{
		Parser:  parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		Linkify: linkOpts,
		Render:  render.Options{Sanitize: cfg.SanitizeHTML},
	}, m, log)
	orch.Start(ctx)

	// Editing sessions count their events directly.
	sessionOpts := linkOpts
	sessionOpts.Observe = func(ev linkify.Event) { m.ObserveLinkEvent(string(ev.Kind)) }
	sessions := session.NewStore(session.Config{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		Linkify:     sessionOpts,
		Logger:      log,
	})
	if err := m.GaugeFunc("sessions_active", "Open editing sessions.", func() float64 {
		return float64(sessions.Len())
	}); err != nil {
		log.Warn("register sessions gauge", "error", err)
	}
	go sessions.Run(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, sessions, m, log, cfg)

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

		orch.Stop()
		cancel()
	}()

	log.Info("starting doclink", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
