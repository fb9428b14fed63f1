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

	"github.com/example/personal-calendar/internal/application"
	"github.com/example/personal-calendar/internal/config"
	"github.com/example/personal-calendar/internal/httpapi"
	"github.com/example/personal-calendar/internal/metadata"
	"github.com/example/personal-calendar/internal/persistence"
	"github.com/example/personal-calendar/internal/persistence/jsonfile"
	"github.com/example/personal-calendar/internal/persistence/sqlite"
)

func main() {
	configPath := flag.String("config", "calendar.yaml", "path to the configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	snapshots, cleanup, err := openSnapshotStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	service := application.NewCalendarService(snapshots, nil, time.Now, logger)
	service.Load(ctx)

	days, err := metadata.NewMemoized(metadata.Weekends(), cfg.MetadataCacheSize)
	if err != nil {
		logger.Error("failed to build metadata cache", "error", err)
		os.Exit(1)
	}
	calendarHandler := httpapi.NewCalendarHandler(service, days, logger)

	middleware := []func(http.Handler) http.Handler{httpapi.RequestLogger(logger)}
	if cfg.AuthEnabled() {
		middleware = append(middleware, httpapi.RequireBasicAuth(cfg.BasicAuth.Username, cfg.BasicAuth.PasswordHash, logger))
	}

	handler := httpapi.NewRouter(httpapi.RouterConfig{
		Calendar:   calendarHandler,
		Middleware: middleware,
	})

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("calendar API listening", "addr", server.Addr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func openSnapshotStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLiteDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close storage", "error", err)
			}
		}, nil
	default:
		return jsonfile.New(cfg.EventsPath, logger), func() {}, nil
	}
}
