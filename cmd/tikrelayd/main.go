package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	tikrelay "github.com/naeem5877/TikTok-API"
)

func main() {
	withBrowser := flag.Bool("browser", false, "Launch a headless browser for the SSR page fallback")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := tikrelay.LoadConfig()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	client := tikrelay.New().
		WithEndpoints(cfg.Endpoints).
		WithAltEndpoint(cfg.AltEndpoint).
		WithTimeout(cfg.RequestTimeout).
		WithLogger(logger)
	defer client.Close()

	if cfg.ProxyURL != "" {
		if err := client.SetProxy(cfg.ProxyURL); err != nil {
			logger.Error("set proxy", "err", err)
			os.Exit(1)
		}
	}

	if *withBrowser {
		if err := client.InitBrowser(); err != nil {
			logger.Error("init browser", "err", err)
			os.Exit(1)
		}
		logger.Info("headless browser ready")
	}

	naming := tikrelay.DefaultNamingPolicy
	naming.Brand = cfg.Brand

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
	}).Handler(tikrelay.NewServer(client, naming, logger))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		logger.Info("http server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "err", err)
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}

	logger.Info("service stopped")
}
