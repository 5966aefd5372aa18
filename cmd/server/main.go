package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/gamegrid/internal/application"
	"github.com/JonMunkholm/gamegrid/internal/config"
	"github.com/JonMunkholm/gamegrid/internal/logging"
	"github.com/JonMunkholm/gamegrid/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_dir", cfg.Data.Dir,
		"catalog", cfg.Data.CatalogPath,
		"load_concurrency", cfg.Data.LoadConcurrency,
		"database", cfg.Database.HasDatabase(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, cat, err := application.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to load data sources", "error", err)
		os.Exit(1)
	}

	for _, page := range cat.Pages {
		for _, st := range reg.Status(page.Key) {
			if !st.Healthy {
				slog.Warn("tab unavailable", "page", st.Page, "tab", st.Tab, "code", st.Code, "error", st.Error)
			}
		}
	}

	server := web.NewServer(reg, cfg)

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-idle
	slog.Info("server stopped")
}
